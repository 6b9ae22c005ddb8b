// Package auth implements the credential verifier, the session manager and
// the route guard: everything between an anonymous browser and a stored user.
package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for a bad username or a bad
	// password alike. Callers must not be able to tell which it was.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionInvalid means the session cookie is absent, forged, or
	// refers to a user that no longer exists. The request proceeds as
	// anonymous.
	ErrSessionInvalid = errors.New("invalid session")

	// ErrProviderAuthFailure means a third-party login could not be
	// completed. No user is created and no session is established.
	ErrProviderAuthFailure = errors.New("provider authentication failed")
)
