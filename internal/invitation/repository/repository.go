package repository

import (
	"context"
	"time"

	"orgmembership/internal/invitation/domain"
)

// Repository defines persistence for invitations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	Create(ctx context.Context, inv *domain.Invitation) error
	// ListPendingByEmail returns pending invitations for email, oldest first.
	ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error)
	ListPendingByOrganization(ctx context.Context, orgID string) ([]*domain.Invitation, error)
	MarkAccepted(ctx context.Context, id string, at time.Time) error
	MarkDeclined(ctx context.Context, id string, at time.Time) error
}
