package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired means a 401 could not be recovered by refreshing.
	// Both tokens have been cleared by the time it is returned.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnexpectedPayload means a 2xx body did not have the expected shape.
	ErrUnexpectedPayload = errors.New("unexpected response payload")
)

// APIError is a non-2xx response passed through to the caller.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

// newAPIError pulls a human message out of a DRF-style error body.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{Status: status, Message: serverMessage(body), Body: body}
}

func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	// field errors: {"email": ["Enter a valid email address."]}
	for _, key := range []string{"non_field_errors", "email", "full_name", "resume", "status"} {
		if list, ok := payload[key].([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// UserMessage returns the server-provided message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
