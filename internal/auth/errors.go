package auth

import (
	"fmt"

	"github.com/desertthunder/spotify-backup/internal/shared"
)

// AuthorizationError is a terminal failure of the authorization flow: consent denied,
// a malformed redirect or a failed token exchange.
//
// It matches [shared.ErrAuthFailed] and its cause with [errors.Is].
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%v: %s", shared.ErrAuthFailed, e.Reason)
}

func (e *AuthorizationError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrAuthFailed}
	}
	return []error{shared.ErrAuthFailed, e.Err}
}
