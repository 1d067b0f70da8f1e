package blogapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// MongoCacheService keeps each entry as one document whose tags array is
// queried directly on invalidation.
type MongoCacheService struct {
	collection *mongo.Collection
}

func NewMongoCacheService(db *mongo.Database) *MongoCacheService {
	return &MongoCacheService{collection: db.Collection(CacheEntry{}.GetTableName())}
}

// EnsureIndexes creates the multikey index used by Invalidate.
func (s *MongoCacheService) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "tags", Value: 1}}})
	return err
}

func (s *MongoCacheService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	entry, _ := newEntries(key, data, tags, duration)

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	var entry CacheEntry
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	if entry.IsExpired() {
		if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return entry.Data, nil
}

func (s *MongoCacheService) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}
	_, err := s.collection.DeleteMany(ctx, bson.M{"tags": bson.M{"$in": tags}})
	return err
}
