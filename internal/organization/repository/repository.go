package repository

import (
	"context"

	"orgmembership/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	CreateOrganization(ctx context.Context, o *domain.Org) error
	UpdateOrganization(ctx context.Context, o *domain.Org) error
	ListOrganizationsByPendingInvite(ctx context.Context, email string) ([]*domain.Org, error)
	ListOrganizationsByCreator(ctx context.Context, uid string) ([]*domain.Org, error)
}
