package session

import "github.com/pkg/errors"

var (
	// ErrNotLoggedIn means an authenticated operation was attempted with no
	// session present. The backend is never contacted in this case.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired means a 401 survived the one permitted refresh
	// attempt. The session has already been cleared when this is returned.
	ErrSessionExpired = errors.New("session expired")
)

// Fixed user-facing messages. Backend-rejected operations surface the
// backend's own message instead; these cover the cases where there is none.
const (
	msgSessionExpired = "Session expired. Please log in again."
	msgNotLoggedIn    = "Please log in to continue."
	msgUnavailable    = "Unable to reach the server. Please try again."
	msgInternal       = "Something went wrong. Please try again."
	msgLoggedOut      = "You have been logged out."
)
