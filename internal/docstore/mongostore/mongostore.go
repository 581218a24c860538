// Package mongostore is a docstore backend over MongoDB: one Mongo collection per
// docstore collection, with the document id stored as _id. It does not implement
// docstore.Transactor; callers fall back to ordered independent writes.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orgmembership/internal/docstore"
)

// Store implements docstore.Store on a Mongo database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ docstore.Store = (*Store)(nil)

// Connect dials uri, pings the deployment, and returns a Store on database name.
// Caller must call Close when done.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongostore: MONGO_URI is not set")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks the deployment is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Get returns the document or docstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, docstore.ErrNotFound
		}
		return nil, err
	}
	return toDocument(m), nil
}

// Put upserts the document; merge uses $set on the given top-level fields.
func (s *Store) Put(ctx context.Context, collection, id string, data docstore.Data, merge bool) error {
	coll := s.db.Collection(collection)
	filter := bson.M{"_id": id}
	body := withoutID(data)
	if !merge {
		_, err := coll.ReplaceOne(ctx, filter, body, options.Replace().SetUpsert(true))
		return err
	}
	update := bson.M{"$set": body}
	if len(body) == 0 {
		update = bson.M{"$setOnInsert": bson.M{"_id": id}}
	}
	_, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Query returns matching documents ordered by _id. Mongo equality on an array
// field matches its elements, which is how ArrayContains is expressed.
func (s *Store) Query(ctx context.Context, collection string, preds ...docstore.Predicate) ([]*docstore.Document, error) {
	filter := bson.M{}
	for _, p := range preds {
		switch p.Op {
		case docstore.OpEqual, docstore.OpArrayContains:
			filter[p.Field] = p.Value
		default:
			return nil, fmt.Errorf("mongostore: unsupported operator %q", p.Op)
		}
	}
	cur, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]*docstore.Document, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDocument(m))
	}
	return out, nil
}

// Create inserts data under a new uuid.
func (s *Store) Create(ctx context.Context, collection string, data docstore.Data) (string, error) {
	id := uuid.New().String()
	body := withoutID(data)
	body["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, body); err != nil {
		return "", err
	}
	return id, nil
}

func withoutID(data docstore.Data) bson.M {
	out := make(bson.M, len(data))
	for k, v := range data {
		if k == "_id" {
			continue
		}
		out[k] = v
	}
	return out
}

func toDocument(m bson.M) *docstore.Document {
	id, _ := m["_id"].(string)
	data := make(docstore.Data, len(m))
	for k, v := range m {
		if k == "_id" {
			continue
		}
		data[k] = normalize(v)
	}
	return &docstore.Document{ID: id, Data: data}
}

// normalize converts driver container types into the plain JSON shapes docstore.Data expects.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}
