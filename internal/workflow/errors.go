package workflow

import (
	"errors"
	"strings"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
)

var (
	ErrClosed               = errors.New("view is closed")
	ErrBusy                 = errors.New("another request for this view is in flight")
	ErrAvailabilityRequired = errors.New("please check vehicle availability first")
	ErrStaleResult          = errors.New("availability result was superseded by a newer check or date change")
	ErrAlreadySubmitted     = errors.New("draft has already been submitted")
	ErrNotLoaded            = errors.New("booking has not been loaded")
	ErrActionNotAllowed     = errors.New("action is not allowed for this booking")
)

// ValidationError is a locally detected input problem. No request is sent
// while one is outstanding.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindValidation           ErrorKind = "validation"
	KindAvailabilityConflict ErrorKind = "availability_conflict"
	KindTransient            ErrorKind = "transient"
	KindUnauthorized         ErrorKind = "unauthorized"
	KindNotFound             ErrorKind = "not_found"
	KindRejected             ErrorKind = "rejected"
	KindState                ErrorKind = "state"
)

// Classify sorts err into the categories the UI reacts to differently.
func Classify(err error) ErrorKind {
	var ve *ValidationError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &ve), errors.Is(err, ErrAvailabilityRequired):
		return KindValidation
	case errors.Is(err, bookingapi.ErrVehicleUnavailable):
		return KindAvailabilityConflict
	case errors.Is(err, bookingapi.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, bookingapi.ErrNotFound):
		return KindNotFound
	case errors.Is(err, bookingapi.ErrRejected):
		return KindRejected
	case errors.Is(err, ErrClosed), errors.Is(err, ErrBusy), errors.Is(err, ErrStaleResult),
		errors.Is(err, ErrAlreadySubmitted), errors.Is(err, ErrNotLoaded), errors.Is(err, ErrActionNotAllowed):
		return KindState
	case bookingapi.IsTransient(err):
		return KindTransient
	}
	return KindRejected
}

// UserMessage returns the Booking Service's own wording when it sent one,
// the local message for workflow errors, and generic otherwise.
func UserMessage(err error, generic string) string {
	if err == nil {
		return ""
	}
	var apiErr *bookingapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch Classify(err) {
	case KindValidation, KindState:
		return err.Error()
	case KindAvailabilityConflict:
		return bookingapi.ErrVehicleUnavailable.Error()
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	}
	return generic
}
