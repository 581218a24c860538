package repository

import (
	"context"
	"errors"

	"orgmembership/internal/docstore"
	membershipdomain "orgmembership/internal/membership/domain"
	"orgmembership/internal/organization/domain"
)

// Collection is the docstore collection holding organizations.
const Collection = "organizations"

// DocumentRepository stores organizations as documents with embedded member records.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns an organization repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for store failures, not for missing documents.
func (r *DocumentRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return docToOrg(doc), nil
}

// CreateOrganization stores o under a generated id and sets o.ID.
func (r *DocumentRepository) CreateOrganization(ctx context.Context, o *domain.Org) error {
	id, err := r.store.Create(ctx, Collection, orgToData(o))
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

// UpdateOrganization merges name, members and pendingInvites into the stored organization.
func (r *DocumentRepository) UpdateOrganization(ctx context.Context, o *domain.Org) error {
	data := orgToData(o)
	delete(data, "createdBy")
	delete(data, "createdAt")
	return r.store.Put(ctx, Collection, o.ID, data, true)
}

// ListOrganizationsByPendingInvite returns every organization whose pendingInvites contains email.
func (r *DocumentRepository) ListOrganizationsByPendingInvite(ctx context.Context, email string) ([]*domain.Org, error) {
	return r.list(ctx, docstore.ArrayContains("pendingInvites", email))
}

// ListOrganizationsByCreator returns every organization created by uid.
func (r *DocumentRepository) ListOrganizationsByCreator(ctx context.Context, uid string) ([]*domain.Org, error) {
	return r.list(ctx, docstore.Equal("createdBy", uid))
}

func (r *DocumentRepository) list(ctx context.Context, preds ...docstore.Predicate) ([]*domain.Org, error) {
	docs, err := r.store.Query(ctx, Collection, preds...)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Org, len(docs))
	for i, d := range docs {
		out[i] = docToOrg(d)
	}
	return out, nil
}

func orgToData(o *domain.Org) docstore.Data {
	members := make([]any, len(o.Members))
	for i, m := range o.Members {
		// joinedAt is a client timestamp: server-assigned timestamps cannot live inside array elements.
		members[i] = map[string]any{
			"uid":      m.UID,
			"email":    m.Email,
			"role":     string(m.Role),
			"joinedAt": docstore.FormatTime(m.JoinedAt),
		}
	}
	return docstore.Data{
		"name":           o.Name,
		"createdBy":      o.CreatedBy,
		"members":        members,
		"pendingInvites": docstore.StringSlice(o.PendingInvites),
		"createdAt":      docstore.FormatTime(o.CreatedAt),
	}
}

func docToOrg(doc *docstore.Document) *domain.Org {
	d := doc.Data
	o := &domain.Org{
		ID:             doc.ID,
		Name:           d.String("name"),
		CreatedBy:      d.String("createdBy"),
		PendingInvites: d.Strings("pendingInvites"),
		CreatedAt:      d.Time("createdAt"),
	}
	for _, m := range d.Objects("members") {
		o.Members = append(o.Members, domain.Member{
			UID:      m.String("uid"),
			Email:    m.String("email"),
			Role:     membershipdomain.Role(m.String("role")),
			JoinedAt: m.Time("joinedAt"),
		})
	}
	return o
}
