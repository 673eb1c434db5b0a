// Package mongodb implements storage.Storage on a MongoDB collection.
//
// Each student is one document shaped by the bson tags on types.Student.
// Soft-deleted documents stay in the collection; read helpers below add
// {"isDeleted": {"$ne": true}} to find filters and prepend the same
// $match stage to aggregation pipelines.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aanand-mishra/student-registry/internal/config"
	"github.com/aanand-mishra/student-registry/internal/storage"
	"github.com/aanand-mishra/student-registry/internal/types"
)

// Mongo is the MongoDB implementation of storage.Storage.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to cfg.Mongo.URI, pings the server, makes sure the unique
// indexes exist and returns a ready store.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb.New: connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb.New: ping: %w", err)
	}

	m := NewWithCollection(client, client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := m.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.Info("mongo connected",
		slog.String("database", cfg.Mongo.Database),
		slog.String("collection", cfg.Mongo.Collection))

	return m, nil
}

// NewWithCollection wraps an already connected client and collection.
func NewWithCollection(client *mongo.Client, coll *mongo.Collection) *Mongo {
	return &Mongo{client: client, collection: coll}
}

// EnsureIndexes creates the unique indexes on id and email. The indexes
// are not partial: ids and emails of soft-deleted students stay taken.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("id_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("EnsureIndexes: %w", err)
	}
	return nil
}

// notDeleted is the clause every default read carries.
func notDeleted() bson.E {
	return bson.E{Key: "isDeleted", Value: bson.D{{Key: "$ne", Value: true}}}
}

// findFilter appends the soft-delete clause to base when filter asks
// for it.
func findFilter(base bson.D, filter storage.Filter) bson.D {
	out := make(bson.D, 0, len(base)+1)
	out = append(out, base...)
	if filter.ExcludeDeleted {
		out = append(out, notDeleted())
	}
	return out
}

// pipeline puts a soft-delete $match stage in front of stages when filter
// asks for it, so the caller's stages never see deleted documents.
func pipeline(filter storage.Filter, stages ...bson.D) mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(stages)+1)
	if filter.ExcludeDeleted {
		out = append(out, bson.D{{Key: "$match", Value: bson.D{notDeleted()}}})
	}
	return append(out, stages...)
}

func conflict(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}

// Insert stores student as a new document.
func (m *Mongo) Insert(ctx context.Context, student types.Student) (types.Student, error) {
	if _, err := m.collection.InsertOne(ctx, student); err != nil {
		return types.Student{}, fmt.Errorf("Insert: %w", conflict(err))
	}
	return student, nil
}

// FindByID returns the one document with the given id, or storage.ErrNotFound.
func (m *Mongo) FindByID(ctx context.Context, id string, filter storage.Filter) (types.Student, error) {
	var student types.Student

	err := m.collection.FindOne(ctx, findFilter(bson.D{{Key: "id", Value: id}}, filter)).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Student{}, fmt.Errorf("FindByID %q: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("FindByID: %w", err)
	}

	return student, nil
}

// Find returns every document passing filter, in natural order.
func (m *Mongo) Find(ctx context.Context, filter storage.Filter) ([]types.Student, error) {
	cursor, err := m.collection.Find(ctx, findFilter(bson.D{}, filter))
	if err != nil {
		return nil, fmt.Errorf("Find: %w", err)
	}

	return decodeAll(ctx, "Find", cursor)
}

// MatchByID runs an aggregation that matches id exactly.
func (m *Mongo) MatchByID(ctx context.Context, id string, filter storage.Filter) ([]types.Student, error) {
	cursor, err := m.collection.Aggregate(ctx,
		pipeline(filter, bson.D{{Key: "$match", Value: bson.D{{Key: "id", Value: id}}}}))
	if err != nil {
		return nil, fmt.Errorf("MatchByID: %w", err)
	}

	return decodeAll(ctx, "MatchByID", cursor)
}

func decodeAll(ctx context.Context, op string, cursor *mongo.Cursor) ([]types.Student, error) {
	defer cursor.Close(ctx)

	students := make([]types.Student, 0)
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return students, nil
}

// SoftDelete never filters on isDeleted: a repeat call matches the
// document again and modifies nothing.
func (m *Mongo) SoftDelete(ctx context.Context, id string) (types.DeleteResult, error) {
	res, err := m.collection.UpdateOne(ctx,
		bson.D{{Key: "id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "isDeleted", Value: true}}}},
	)
	if err != nil {
		return types.DeleteResult{}, fmt.Errorf("SoftDelete: %w", err)
	}

	return types.DeleteResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ storage.Storage = (*Mongo)(nil)
