package identity

import (
	"errors"

	"google.golang.org/api/googleapi"
)

var (
	ErrSessionNotFound = errors.New("auth session not found")
	ErrInvalidToken    = errors.New("invalid session token")
)

// Fallback messages when the provider gives none.
const (
	MsgLoginFailed  = "Login failed."
	MsgSignupFailed = "Signup failed."
)

// AuthError carries the identity provider's message, shown to the user verbatim.
type AuthError struct {
	Op      string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// asAuthError converts a provider failure into an AuthError, keeping the
// provider's own message.
func asAuthError(op string, err error, fallback string) error {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		if authErr.Message == "" {
			authErr.Message = fallback
		}
		return authErr
	}
	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		msg = gerr.Message
	}
	if msg == "" {
		msg = fallback
	}
	return &AuthError{Op: op, Message: msg, Err: err}
}
