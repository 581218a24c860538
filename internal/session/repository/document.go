package repository

import (
	"context"
	"errors"
	"time"

	"orgmembership/internal/docstore"
	"orgmembership/internal/session/domain"
)

// Collection is the docstore collection holding sessions.
const Collection = "sessions"

// DocumentRepository stores sessions as documents keyed by session id.
type DocumentRepository struct {
	store docstore.Store
}

var _ Repository = (*DocumentRepository)(nil)

// NewDocumentRepository returns a session repository backed by store.
func NewDocumentRepository(store docstore.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for store failures, not for missing documents.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return docToSession(doc), nil
}

// Create persists the session. The session must have ID set.
func (r *DocumentRepository) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.UserID == "" {
		return errors.New("session user id is required")
	}
	return r.store.Put(ctx, Collection, s.ID, docstore.Data{
		"userId":     s.UserID,
		"expiresAt":  docstore.FormatTime(s.ExpiresAt),
		"revokedAt":  nullableTime(s.RevokedAt),
		"lastSeenAt": nullableTime(s.LastSeenAt),
		"createdAt":  docstore.FormatTime(s.CreatedAt),
	}, false)
}

// Revoke sets revokedAt on the session. Revoking an already revoked session keeps the first timestamp.
func (r *DocumentRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil || s.RevokedAt != nil {
		return nil
	}
	return r.store.Put(ctx, Collection, id, docstore.Data{"revokedAt": docstore.FormatTime(at)}, true)
}

// RevokeAllByUser revokes every live session of userID.
func (r *DocumentRepository) RevokeAllByUser(ctx context.Context, userID string, at time.Time) error {
	docs, err := r.store.Query(ctx, Collection, docstore.Equal("userId", userID))
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.Data.String("revokedAt") != "" {
			continue
		}
		if err := r.store.Put(ctx, Collection, doc.ID, docstore.Data{"revokedAt": docstore.FormatTime(at)}, true); err != nil {
			return err
		}
	}
	return nil
}

// UpdateLastSeen records activity on the session.
func (r *DocumentRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return r.store.Put(ctx, Collection, id, docstore.Data{"lastSeenAt": docstore.FormatTime(at)}, true)
}

func docToSession(doc *docstore.Document) *domain.Session {
	d := doc.Data
	return &domain.Session{
		ID:         doc.ID,
		UserID:     d.String("userId"),
		ExpiresAt:  d.Time("expiresAt"),
		RevokedAt:  timePtr(d.Time("revokedAt")),
		LastSeenAt: timePtr(d.Time("lastSeenAt")),
		CreatedAt:  d.Time("createdAt"),
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
