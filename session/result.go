package session

import (
	"github.com/jrsteele09/go-shopfront-client/rest"
	"github.com/pkg/errors"
)

// Result is the uniform outcome of every session operation. No operation
// lets an error escape its boundary; failures are normalized into this
// shape and Message is fit to show to the user directly.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// RedirectToLogin tells the view layer the user must authenticate
	// (again) before retrying. The session manager itself never navigates.
	RedirectToLogin bool `json:"redirectToLogin,omitempty"`
}

func okResult(message string) Result {
	return Result{Success: true, Message: message}
}

// failureResult maps an internal error to the caller-facing Result.
// Backend 4xx messages pass through verbatim; transport failures and
// anything unexpected get fixed generic messages.
func failureResult(err error) Result {
	switch {
	case errors.Is(err, ErrSessionExpired):
		return Result{Message: msgSessionExpired, RedirectToLogin: true}
	case errors.Is(err, ErrNotLoggedIn):
		return Result{Message: msgNotLoggedIn, RedirectToLogin: true}
	case rest.IsUnavailable(err):
		return Result{Message: msgUnavailable}
	}
	if msg, ok := rest.BackendMessage(err); ok {
		return Result{Message: msg}
	}
	return Result{Message: msgInternal}
}
