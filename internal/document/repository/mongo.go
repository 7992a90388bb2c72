package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/docshare/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on a MongoDB collection. Records carry
// their public id in an "id" field guarded by a unique index; Mongo's own
// _id is left to the driver.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the unique id index and the created_at index used by
// the sweeper. Idempotent; call once at startup.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := m.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("id_unique")},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: options.Index().SetName("created_at")},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", classifyMongo(err))
	}
	return nil
}

func (m *MongoRepo) Insert(ctx context.Context, d *document.Document) error {
	if _, err := m.col.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return document.Errorf(document.ErrConflict, "ID %q is already taken", d.ID)
		}
		return fmt.Errorf("insert document: %w", classifyMongo(err))
	}
	return nil
}

func (m *MongoRepo) Exists(ctx context.Context, id string) (bool, error) {
	n, err := m.col.CountDocuments(ctx, bson.M{"id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count documents: %w", classifyMongo(err))
	}
	return n > 0, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	if err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", classifyMongo(err))
	}
	return &d, nil
}

func (m *MongoRepo) DeleteWithCode(ctx context.Context, id, code string) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id, "delete_code": code})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", classifyMongo(err))
	}
	return res.DeletedCount > 0, nil
}

func (m *MongoRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": ceilMillis(threshold)}})
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", classifyMongo(err))
	}
	return res.DeletedCount, nil
}

func (m *MongoRepo) ListOlderThan(ctx context.Context, threshold time.Time) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"created_at": bson.M{"$lt": ceilMillis(threshold)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find expired: %w", classifyMongo(err))
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode expired: %w", err)
		}
		out = append(out, &d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired: %w", classifyMongo(err))
	}
	return out, nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	if err := m.col.Database().Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", classifyMongo(err))
	}
	return nil
}

// classifyMongo marks connectivity failures as document.ErrUnavailable.
func classifyMongo(err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %v", document.ErrUnavailable, err)
	}
	return err
}
