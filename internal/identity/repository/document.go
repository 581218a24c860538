package repository

import (
	"context"

	"orgmembership/internal/docstore"
	"orgmembership/internal/identity/domain"
)

// Collection is the docstore collection holding identities.
const Collection = "identities"

// DocumentRepository stores identities as documents with generated ids.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns an identity repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// GetByUserAndProvider returns the identity for userID and provider, or nil if not found.
func (r *DocumentRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	docs, err := r.store.Query(ctx, Collection,
		docstore.Equal("userId", userID),
		docstore.Equal("provider", string(provider)))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	d := docs[0].Data
	return &domain.Identity{
		ID:           docs[0].ID,
		UserID:       d.String("userId"),
		Provider:     domain.IdentityProvider(d.String("provider")),
		ProviderID:   d.String("providerId"),
		PasswordHash: d.String("passwordHash"),
		CreatedAt:    d.Time("createdAt"),
	}, nil
}

// Create stores i under a generated id and sets i.ID.
func (r *DocumentRepository) Create(ctx context.Context, i *domain.Identity) error {
	if err := i.Validate(); err != nil {
		return err
	}
	id, err := r.store.Create(ctx, Collection, docstore.Data{
		"userId":       i.UserID,
		"provider":     string(i.Provider),
		"providerId":   i.ProviderID,
		"passwordHash": i.PasswordHash,
		"createdAt":    docstore.FormatTime(i.CreatedAt),
	})
	if err != nil {
		return err
	}
	i.ID = id
	return nil
}
