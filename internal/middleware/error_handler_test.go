package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/dto"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

func render(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/drafts/x/submit", nil), rec)

	NewErrorHandler("/login")(err, c)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestErrorHandler_Kinds(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		code  int
		kind  workflow.ErrorKind
		field string
		msg   string
	}{
		{
			name: "validation", err: &workflow.ValidationError{Field: "end_date", Message: "End date must be after start date"},
			code: http.StatusUnprocessableEntity, kind: workflow.KindValidation, field: "end_date",
			msg: "End date must be after start date",
		},
		{
			name: "availability required", err: workflow.ErrAvailabilityRequired,
			code: http.StatusUnprocessableEntity, kind: workflow.KindValidation,
			msg: workflow.ErrAvailabilityRequired.Error(),
		},
		{
			name: "conflict", err: fmt.Errorf("submit: %w", bookingapi.ErrVehicleUnavailable),
			code: http.StatusConflict, kind: workflow.KindAvailabilityConflict,
			msg: bookingapi.ErrVehicleUnavailable.Error(),
		},
		{
			name: "transient with fallback", err: Failure(errors.New("dial tcp: refused"), workflow.PaymentFailure),
			code: http.StatusServiceUnavailable, kind: workflow.KindTransient, msg: workflow.PaymentFailure,
		},
		{
			name: "busy", err: workflow.ErrBusy,
			code: http.StatusConflict, kind: workflow.KindState, msg: workflow.ErrBusy.Error(),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, resp := render(t, tc.err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, string(tc.kind), resp.Kind)
			assert.Equal(t, tc.field, resp.Field)
			assert.Equal(t, tc.msg, resp.Message)
			assert.Empty(t, resp.LoginURL)
		})
	}
}

func TestErrorHandler_UnauthorizedCarriesLoginURL(t *testing.T) {
	code, resp := render(t, fmt.Errorf("load: %w", bookingapi.ErrUnauthorized))

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "/login", resp.LoginURL)
	assert.Equal(t, string(workflow.KindUnauthorized), resp.Kind)
}

func TestErrorHandler_HTTPError(t *testing.T) {
	code, resp := render(t, echo.NewHTTPError(http.StatusBadRequest, "invalid request body"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid request body", resp.Message)
	assert.Empty(t, resp.Kind)
}
