package gateway

import (
	"errors"
	"fmt"
)

// ErrAuthRequired is returned after a 401 or 403 has sent the operator to
// the SSO entry point. Callers must not retry or render it.
var ErrAuthRequired = errors.New("authentication required")

// RequestError is any other failed call: a non-2xx status or a transport
// failure (Status 0). Message is meant for display.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func newStatusError(status int, body string) *RequestError {
	if body == "" {
		return &RequestError{Status: status, Message: fmt.Sprintf("HTTP %d", status)}
	}
	return &RequestError{Status: status, Message: body}
}

// IsAuthRequired reports whether err (or anything it wraps) is ErrAuthRequired.
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}
