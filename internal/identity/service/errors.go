package service

import (
	"errors"
	"fmt"
)

// AuthErrorCode classifies an authentication provider failure.
type AuthErrorCode string

const (
	CodeInvalidEmail      AuthErrorCode = "invalid-email"
	CodeWeakPassword      AuthErrorCode = "weak-password"
	CodeEmailAlreadyInUse AuthErrorCode = "email-already-in-use"
	CodeInvalidCredential AuthErrorCode = "invalid-credential"
	CodeUserDisabled      AuthErrorCode = "user-disabled"
	CodeSessionExpired    AuthErrorCode = "session-expired"
)

// AuthError is returned for sign-up, sign-in and token failures the caller can act on.
// Store failures are returned as plain wrapped errors instead.
type AuthError struct {
	Code AuthErrorCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "auth: " + string(e.Code)
	}
	return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func authError(code AuthErrorCode, err error) *AuthError {
	return &AuthError{Code: code, Err: err}
}

// IsAuthError reports whether err carries an AuthError with code.
func IsAuthError(err error, code AuthErrorCode) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}
