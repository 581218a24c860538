package repository

import (
	"context"
	"errors"
	"time"

	"orgmembership/internal/docstore"
	membershipdomain "orgmembership/internal/membership/domain"
	"orgmembership/internal/user/domain"
)

// Collection is the docstore collection holding principals.
const Collection = "users"

// DocumentRepository stores users as documents keyed by user id.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns a user repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for store failures, not for missing documents.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return docToUser(doc), nil
}

// GetByEmail returns the user whose normalized email matches, or nil if not found.
func (r *DocumentRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Equal("email", domain.NormalizeEmail(email)))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docToUser(docs[0]), nil
}

// Create writes u under u.ID, replacing any existing document.
func (r *DocumentRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		return errors.New("user id is required")
	}
	if err := u.Validate(); err != nil {
		return err
	}
	return r.store.Put(ctx, Collection, u.ID, userToData(u), false)
}

// SetAffiliation merges organizationId, role and updatedAt into the user document.
func (r *DocumentRepository) SetAffiliation(ctx context.Context, id, orgID string, role membershipdomain.Role, at time.Time) error {
	if (orgID == "") != (role == "") {
		return domain.ErrAffiliationMismatch
	}
	return r.store.Put(ctx, Collection, id, docstore.Data{
		"organizationId": docstore.NullableString(orgID),
		"role":           docstore.NullableString(string(role)),
		"updatedAt":      docstore.FormatTime(at),
	}, true)
}

// ClearAffiliation nulls organizationId and role.
func (r *DocumentRepository) ClearAffiliation(ctx context.Context, id string, at time.Time) error {
	return r.SetAffiliation(ctx, id, "", "", at)
}

func userToData(u *domain.User) docstore.Data {
	return docstore.Data{
		"email":          u.Email,
		"displayName":    u.DisplayName,
		"organizationId": docstore.NullableString(u.OrganizationID),
		"role":           docstore.NullableString(string(u.Role)),
		"status":         string(u.Status),
		"createdAt":      docstore.FormatTime(u.CreatedAt),
		"updatedAt":      docstore.FormatTime(u.UpdatedAt),
	}
}

func docToUser(doc *docstore.Document) *domain.User {
	d := doc.Data
	return &domain.User{
		ID:             doc.ID,
		Email:          d.String("email"),
		DisplayName:    d.String("displayName"),
		OrganizationID: d.String("organizationId"),
		Role:           membershipdomain.Role(d.String("role")),
		Status:         domain.UserStatus(d.String("status")),
		CreatedAt:      d.Time("createdAt"),
		UpdatedAt:      d.Time("updatedAt"),
	}
}
