package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

// FailureError carries the message to show when the Booking Service sent
// no wording of its own.
type FailureError struct {
	Err      error
	Fallback string
}

func (e *FailureError) Error() string { return e.Err.Error() }

func (e *FailureError) Unwrap() error { return e.Err }

func Failure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &FailureError{Err: err, Fallback: fallback}
}

var kindStatus = map[workflow.ErrorKind]int{
	workflow.KindValidation:           http.StatusUnprocessableEntity,
	workflow.KindAvailabilityConflict: http.StatusConflict,
	workflow.KindState:                http.StatusConflict,
	workflow.KindTransient:            http.StatusServiceUnavailable,
	workflow.KindUnauthorized:         http.StatusUnauthorized,
	workflow.KindNotFound:             http.StatusNotFound,
	workflow.KindRejected:             http.StatusBadRequest,
}

// NewErrorHandler renders errors as dto.ErrorResponse. Unauthorized
// answers point the client at loginURL.
func NewErrorHandler(loginURL string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				msg = m
			}
			_ = c.JSON(he.Code, dto.ErrorResponse{Message: msg})
			return
		}

		fallback := workflow.GenericFailure
		var fe *FailureError
		if errors.As(err, &fe) {
			fallback = fe.Fallback
		}

		kind := workflow.Classify(err)
		code, ok := kindStatus[kind]
		if !ok {
			code = http.StatusInternalServerError
		}
		if code >= http.StatusInternalServerError {
			log.Printf("[ErrorHandler] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		resp := dto.ErrorResponse{
			Message: workflow.UserMessage(err, fallback),
			Kind:    string(kind),
			Field:   fieldOf(err),
		}
		if kind == workflow.KindUnauthorized {
			resp.LoginURL = loginURL
		}
		_ = c.JSON(code, resp)
	}
}

func fieldOf(err error) string {
	var ve *workflow.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	var apiErr *bookingapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Field
	}
	return ""
}
