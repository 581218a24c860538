package domain

import (
	"errors"
	"time"
)

// Identity links a principal to a sign-in method. Only the local email/password
// provider is issued today; PasswordHash is empty for any other provider.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
}

type IdentityProvider string

const (
	IdentityProviderLocal IdentityProvider = "local"
)

// Validate validates the identity for persistence.
func (i *Identity) Validate() error {
	if i.UserID == "" {
		return errors.New("user id is required")
	}
	if i.Provider == IdentityProviderLocal && i.PasswordHash == "" {
		return errors.New("local identity requires a password hash")
	}
	return nil
}
