// Package docstore defines the document store contract used by the repositories:
// per-collection get, put (replace or merge), predicate queries, and create with a
// generated id. Backends live in the memstore, pgstore and mongostore subpackages.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no document exists for the collection and id.
var ErrNotFound = errors.New("document not found")

// Data is the JSON-shaped body of a document. Values are strings, bools, nil,
// []any and map[string]any; timestamps are stored as RFC3339Nano strings.
type Data map[string]any

// Document is a stored document with its id.
type Document struct {
	ID   string
	Data Data
}

// Op is a query predicate operator.
type Op string

const (
	// OpEqual matches documents whose top-level field equals the value.
	OpEqual Op = "=="
	// OpArrayContains matches documents whose top-level array field contains the value.
	OpArrayContains Op = "array-contains"
)

// Predicate filters a query on a single top-level string field.
type Predicate struct {
	Field string
	Op    Op
	Value string
}

// Equal returns a predicate matching field == value.
func Equal(field, value string) Predicate {
	return Predicate{Field: field, Op: OpEqual, Value: value}
}

// ArrayContains returns a predicate matching documents whose array field contains value.
func ArrayContains(field, value string) Predicate {
	return Predicate{Field: field, Op: OpArrayContains, Value: value}
}

// Store is the document store contract. Each call is independent; use Transactor
// when the backend supports grouping calls.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Put writes data under id. With merge, top-level fields are merged into the
	// existing document (created if missing); otherwise the document is replaced.
	Put(ctx context.Context, collection, id string, data Data, merge bool) error
	// Query returns all documents in collection matching every predicate.
	Query(ctx context.Context, collection string, preds ...Predicate) ([]*Document, error)
	// Create stores data under a newly generated id and returns the id.
	Create(ctx context.Context, collection string, data Data) (string, error)
}

// Transactor is implemented by stores that can run several calls atomically.
// fn receives a Store bound to the transaction; returning an error rolls back.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}

// Pinger is implemented by stores with a reachable backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// FormatTime renders t the way timestamps are stored inside documents.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// String returns the string value of key, or "" when missing or not a string.
func (d Data) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Time parses the timestamp stored under key. Missing or malformed values yield the zero time.
func (d Data) Time(key string) time.Time {
	s := d.String(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Strings returns the string elements of the array stored under key.
func (d Data) Strings(key string) []string {
	arr, _ := d[key].([]any)
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Objects returns the object elements of the array stored under key.
func (d Data) Objects(key string) []Data {
	arr, _ := d[key].([]any)
	out := make([]Data, 0, len(arr))
	for _, v := range arr {
		switch m := v.(type) {
		case map[string]any:
			out = append(out, Data(m))
		case Data:
			out = append(out, m)
		}
	}
	return out
}

// StringSlice converts ss into the array form stored in documents.
func StringSlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// NullableString returns nil for "" so absent references are stored as null.
func NullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Matches reports whether data satisfies every predicate. Backends without a
// native query language use it to filter in process.
func Matches(data Data, preds []Predicate) bool {
	for _, p := range preds {
		switch p.Op {
		case OpEqual:
			if s, ok := data[p.Field].(string); !ok || s != p.Value {
				return false
			}
		case OpArrayContains:
			found := false
			for _, v := range data.Strings(p.Field) {
				if v == p.Value {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}
