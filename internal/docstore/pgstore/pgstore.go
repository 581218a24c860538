// Package pgstore is a docstore backend over the Postgres "documents" table
// (see internal/db/migrations). Documents are JSONB; predicates compile to
// containment (@>) so the GIN index on doc serves them.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"orgmembership/internal/docstore"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements docstore.Store and docstore.Transactor on a *sql.DB opened with the pgx driver.
type Store struct {
	db *sql.DB
	q  querier
	// forUpdate locks rows read by Get; set only on transaction-bound stores.
	forUpdate bool
}

var (
	_ docstore.Store      = (*Store)(nil)
	_ docstore.Transactor = (*Store)(nil)
)

// New returns a Store that uses db for persistence.
func New(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Get returns the document or docstore.ErrNotFound. Inside RunInTx the row is locked until commit.
func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	query := `SELECT doc FROM documents WHERE collection = $1 AND id = $2`
	if s.forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	if err := s.q.QueryRowContext(ctx, query, collection, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{ID: id, Data: data}, nil
}

// Put upserts the document; with merge the top-level fields are concatenated onto the stored JSONB.
func (s *Store) Put(ctx context.Context, collection, id string, data docstore.Data, merge bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("pgstore: encode %s/%s: %w", collection, id, err)
	}
	query := `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	if merge {
		query = `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET doc = documents.doc || EXCLUDED.doc, updated_at = now()`
	}
	_, err = s.q.ExecContext(ctx, query, collection, id, string(raw))
	return err
}

// Query returns matching documents ordered by id.
func (s *Store) Query(ctx context.Context, collection string, preds ...docstore.Predicate) ([]*docstore.Document, error) {
	query, args, err := buildQuery(collection, preds)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*docstore.Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, &docstore.Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

// Create inserts data under a new uuid.
func (s *Store) Create(ctx context.Context, collection string, data docstore.Data) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("pgstore: encode %s: %w", collection, err)
	}
	id := uuid.New().String()
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(raw))
	if err != nil {
		return "", err
	}
	return id, nil
}

// RunInTx runs fn inside a database transaction. Rows read through the
// transaction-bound store are locked with FOR UPDATE.
func (s *Store) RunInTx(ctx context.Context, fn func(tx docstore.Store) error) error {
	if s.db == nil {
		// Already transaction-bound; nest into the current transaction.
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Store{q: tx, forUpdate: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.PingContext(ctx)
}

func buildQuery(collection string, preds []docstore.Predicate) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, doc FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, p := range preds {
		var probe any
		switch p.Op {
		case docstore.OpEqual:
			probe = map[string]any{p.Field: p.Value}
		case docstore.OpArrayContains:
			probe = map[string]any{p.Field: []any{p.Value}}
		default:
			return "", nil, fmt.Errorf("pgstore: unsupported operator %q", p.Op)
		}
		raw, err := json.Marshal(probe)
		if err != nil {
			return "", nil, err
		}
		args = append(args, string(raw))
		fmt.Fprintf(&b, ` AND doc @> $%d::jsonb`, len(args))
	}
	b.WriteString(` ORDER BY id`)
	return b.String(), args, nil
}

func decode(raw []byte) (docstore.Data, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("pgstore: decode: %w", err)
	}
	return docstore.Data(m), nil
}
