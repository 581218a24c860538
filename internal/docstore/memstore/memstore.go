// Package memstore is an in-process docstore backend. Documents are deep-copied
// through JSON on every read and write so callers never share state with the store.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"orgmembership/internal/docstore"
)

// Store keeps documents in memory keyed by collection and id.
type Store struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

var (
	_ docstore.Store      = (*Store)(nil)
	_ docstore.Transactor = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

// Get returns a copy of the document or docstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(collection, id)
}

// Put replaces or merges the document.
func (s *Store) Put(ctx context.Context, collection, id string, data docstore.Data, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(collection, id, data, merge)
}

// Query returns matching documents ordered by id.
func (s *Store) Query(ctx context.Context, collection string, preds ...docstore.Predicate) ([]*docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(collection, preds)
}

// Create stores data under a new uuid.
func (s *Store) Create(ctx context.Context, collection string, data docstore.Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	if err := s.put(collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

// RunInTx runs fn against a snapshot of the store and commits the snapshot only
// when fn succeeds. Other callers block until the transaction finishes.
func (s *Store) RunInTx(ctx context.Context, fn func(tx docstore.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := &Store{data: make(map[string]map[string][]byte, len(s.data))}
	for coll, docs := range s.data {
		c := make(map[string][]byte, len(docs))
		for id, raw := range docs {
			c[id] = raw
		}
		snapshot.data[coll] = c
	}
	if err := fn(snapshot); err != nil {
		return err
	}
	s.data = snapshot.data
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) get(collection, id string) (*docstore.Document, error) {
	raw, ok := s.data[collection][id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	data, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &docstore.Document{ID: id, Data: data}, nil
}

func (s *Store) put(collection, id string, data docstore.Data, merge bool) error {
	if id == "" {
		return fmt.Errorf("memstore: empty id for collection %q", collection)
	}
	docs, ok := s.data[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.data[collection] = docs
	}
	next := data
	if merge {
		if raw, exists := docs[id]; exists {
			current, err := decode(raw)
			if err != nil {
				return err
			}
			for k, v := range data {
				current[k] = v
			}
			next = current
		}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("memstore: encode %s/%s: %w", collection, id, err)
	}
	docs[id] = raw
	return nil
}

func (s *Store) query(collection string, preds []docstore.Predicate) ([]*docstore.Document, error) {
	docs := s.data[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*docstore.Document
	for _, id := range ids {
		data, err := decode(docs[id])
		if err != nil {
			return nil, err
		}
		if docstore.Matches(data, preds) {
			out = append(out, &docstore.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func decode(raw []byte) (docstore.Data, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("memstore: decode: %w", err)
	}
	return docstore.Data(m), nil
}
