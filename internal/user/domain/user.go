package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	membershipdomain "orgmembership/internal/membership/domain"
)

// User is the principal: an authenticated identity plus its profile and affiliation.
// OrganizationID and Role are either both set or both empty.
type User struct {
	ID             string
	Email          string
	DisplayName    string
	OrganizationID string
	Role           membershipdomain.Role
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	ErrEmailRequired       = errors.New("email is required")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrAffiliationMismatch = errors.New("organization and role must be set together")
)

// NormalizeEmail trims and lower-cases an email for storage and matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is present and syntactically plausible.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Affiliated reports whether the user belongs to an organization.
func (u *User) Affiliated() bool {
	return u.OrganizationID != ""
}

// IsAdmin reports whether the user is an admin of its organization.
func (u *User) IsAdmin() bool {
	return u.Affiliated() && u.Role == membershipdomain.RoleAdmin
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if (u.OrganizationID == "") != (u.Role == "") {
		return ErrAffiliationMismatch
	}
	if u.Role != "" && !u.Role.Valid() {
		return errors.New("invalid role")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
