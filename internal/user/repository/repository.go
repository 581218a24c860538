package repository

import (
	"context"
	"time"

	membershipdomain "orgmembership/internal/membership/domain"
	"orgmembership/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// SetAffiliation writes organizationId and role together; the rest of the profile is untouched.
	SetAffiliation(ctx context.Context, id, orgID string, role membershipdomain.Role, at time.Time) error
	// ClearAffiliation sets organizationId and role to null.
	ClearAffiliation(ctx context.Context, id string, at time.Time) error
}
