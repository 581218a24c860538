package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"orgmembership/internal/docstore"
	"orgmembership/internal/invitation/domain"
)

// Collection is the docstore collection holding invitations.
const Collection = "invitations"

// DocumentRepository stores invitations as documents with generated ids.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns an invitation repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// GetByID returns the invitation for id, or nil if not found.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return docToInvitation(doc), nil
}

// Create stores inv under a generated id and sets inv.ID.
func (r *DocumentRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	id, err := r.store.Create(ctx, Collection, invitationToData(inv))
	if err != nil {
		return err
	}
	inv.ID = id
	return nil
}

// ListPendingByEmail returns pending invitations addressed to email, ordered by createdAt.
func (r *DocumentRepository) ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	return r.list(ctx,
		docstore.Equal("email", email),
		docstore.Equal("status", string(domain.StatusPending)))
}

// ListPendingByOrganization returns pending invitations for orgID, ordered by createdAt.
func (r *DocumentRepository) ListPendingByOrganization(ctx context.Context, orgID string) ([]*domain.Invitation, error) {
	return r.list(ctx,
		docstore.Equal("organizationId", orgID),
		docstore.Equal("status", string(domain.StatusPending)))
}

// MarkAccepted sets status accepted and acceptedAt.
func (r *DocumentRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	return r.store.Put(ctx, Collection, id, docstore.Data{
		"status":     string(domain.StatusAccepted),
		"acceptedAt": docstore.FormatTime(at),
	}, true)
}

// MarkDeclined sets status declined and declinedAt.
func (r *DocumentRepository) MarkDeclined(ctx context.Context, id string, at time.Time) error {
	return r.store.Put(ctx, Collection, id, docstore.Data{
		"status":     string(domain.StatusDeclined),
		"declinedAt": docstore.FormatTime(at),
	}, true)
}

func (r *DocumentRepository) list(ctx context.Context, preds ...docstore.Predicate) ([]*domain.Invitation, error) {
	docs, err := r.store.Query(ctx, Collection, preds...)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Invitation, len(docs))
	for i, d := range docs {
		out[i] = docToInvitation(d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func invitationToData(inv *domain.Invitation) docstore.Data {
	return docstore.Data{
		"email":            inv.Email,
		"organizationId":   inv.OrganizationID,
		"organizationName": inv.OrganizationName,
		"invitedBy":        inv.InvitedBy,
		"invitedByEmail":   inv.InvitedByEmail,
		"status":           string(inv.Status),
		"createdAt":        docstore.FormatTime(inv.CreatedAt),
		"acceptedAt":       nullableTime(inv.AcceptedAt),
		"declinedAt":       nullableTime(inv.DeclinedAt),
	}
}

func docToInvitation(doc *docstore.Document) *domain.Invitation {
	d := doc.Data
	return &domain.Invitation{
		ID:               doc.ID,
		Email:            d.String("email"),
		OrganizationID:   d.String("organizationId"),
		OrganizationName: d.String("organizationName"),
		InvitedBy:        d.String("invitedBy"),
		InvitedByEmail:   d.String("invitedByEmail"),
		Status:           domain.Status(d.String("status")),
		CreatedAt:        d.Time("createdAt"),
		AcceptedAt:       timePtr(d.Time("acceptedAt")),
		DeclinedAt:       timePtr(d.Time("declinedAt")),
	}
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return docstore.FormatTime(*t)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
