package rest

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnauthorized is returned whenever the backend answers 401. Callers use
// it to decide whether a token refresh is worth attempting.
var ErrUnauthorized = errors.New("unauthorized")

// ErrUnavailable wraps transport-level failures: the request never reached
// the backend, or the response never arrived.
var ErrUnavailable = errors.New("backend unreachable")

// StatusError is any non-401 error status. Message carries the backend's
// own message verbatim so callers can surface it unchanged.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// BackendMessage extracts the backend's verbatim message from err, if err
// carries one.
func BackendMessage(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message, true
	}
	return "", false
}

// IsUnauthorized reports whether err stems from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnavailable reports whether err stems from a transport failure rather
// than a backend response.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
