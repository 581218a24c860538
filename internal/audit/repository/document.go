package repository

import (
	"context"
	"sort"

	"orgmembership/internal/audit/domain"
	"orgmembership/internal/docstore"
)

// Collection is the docstore collection holding audit entries.
const Collection = "audit_logs"

// DocumentRepository stores audit entries as documents.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns an audit repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// Create stores a under its ID when set, otherwise under a generated id.
func (r *DocumentRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		meta[k] = v
	}
	data := docstore.Data{
		"orgId":     a.OrgID,
		"userId":    a.UserID,
		"action":    a.Action,
		"resource":  a.Resource,
		"metadata":  meta,
		"createdAt": docstore.FormatTime(a.CreatedAt),
	}
	if a.ID != "" {
		return r.store.Put(ctx, Collection, a.ID, data, false)
	}
	id, err := r.store.Create(ctx, Collection, data)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// ListByOrg returns entries for orgID ordered newest first.
func (r *DocumentRepository) ListByOrg(ctx context.Context, orgID string, limit int) ([]*domain.AuditLog, error) {
	docs, err := r.store.Query(ctx, Collection, docstore.Equal("orgId", orgID))
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, 0, len(docs))
	for _, doc := range docs {
		d := doc.Data
		entry := &domain.AuditLog{
			ID:        doc.ID,
			OrgID:     d.String("orgId"),
			UserID:    d.String("userId"),
			Action:    d.String("action"),
			Resource:  d.String("resource"),
			CreatedAt: d.Time("createdAt"),
		}
		if meta, ok := d["metadata"].(map[string]any); ok {
			entry.Metadata = make(map[string]string, len(meta))
			for k, v := range meta {
				if s, ok := v.(string); ok {
					entry.Metadata[k] = s
				}
			}
		}
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
