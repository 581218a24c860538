package repository

import (
	"context"

	"orgmembership/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	// ListByOrg returns the most recent entries for orgID, newest first, at most limit.
	ListByOrg(ctx context.Context, orgID string, limit int) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
}
