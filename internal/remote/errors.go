package remote

import (
	"errors"
	"fmt"
)

// GenericMessage is shown when a failure carries no server message.
const GenericMessage = "Something went wrong. Please try again."

// ErrorBody is the JSON error shape returned by the staging service.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error is returned when the staging service answers with an error status.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("staging service: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("staging service: HTTP %d: %s", e.StatusCode, e.Message)
}

// NotFound reports whether the service said the resource does not exist.
func (e *Error) NotFound() bool { return e.StatusCode == 404 }

// MessageOr returns the server's human-readable message carried by err, or
// fallback when there is none (transport failures, empty bodies).
func MessageOr(err error, fallback string) string {
	var rerr *Error
	if errors.As(err, &rerr) && rerr.Message != "" {
		return rerr.Message
	}
	return fallback
}
