package bookingapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrNotFound           = errors.New("not found")
	ErrVehicleUnavailable = errors.New("vehicle is not available for the selected dates")
	ErrRejected           = errors.New("request rejected")
	ErrServer             = errors.New("booking service unavailable")
)

// APIError is a non-2xx answer from the Booking Service. Message is the
// service's own wording when it sent one.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("booking service returned %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }

// IsTransient reports whether retrying the same call may succeed: transport
// failures and 5xx answers.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return errors.Is(apiErr.kind, ErrServer)
	}
	return true
}

func newAPIError(status int, body []byte) *APIError {
	field, msg := extractMessage(body)
	e := &APIError{StatusCode: status, Message: msg, Field: field}

	switch {
	case status == http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case status == http.StatusNotFound:
		e.kind = ErrNotFound
	case status == http.StatusConflict:
		e.kind = ErrVehicleUnavailable
	case status >= 500:
		e.kind = ErrServer
	case strings.Contains(strings.ToLower(msg), "not available"):
		e.kind = ErrVehicleUnavailable
	default:
		e.kind = ErrRejected
	}
	return e
}

// extractMessage pulls the first human-readable error from a DRF-style
// body: non_field_errors, then error/detail/message, then the first field
// error in key order.
func extractMessage(body []byte) (field, msg string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", ""
	}

	if m := firstString(fields["non_field_errors"]); m != "" {
		return "", m
	}
	for _, k := range []string{"error", "detail", "message"} {
		if m := firstString(fields[k]); m != "" {
			return "", m
		}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if m := firstString(fields[k]); m != "" {
			return k, m
		}
	}
	return "", ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
