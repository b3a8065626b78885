package repository

import (
	"context"
	"time"

	"lodgebook/pkg/config"
	"lodgebook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LodgeLockRepository provides operations for per-lodge advisory locks
type LodgeLockRepository interface {
	Create(ctx context.Context, lock *model.LodgeLock) (*model.LodgeLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoLodgeLockRepository struct {
	collection *mongo.Collection
}

func NewLodgeLockRepository(cfg *config.Config) LodgeLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	collection := db.Collection("Lodge_locks")

	// The server reaps lock documents once expires_at passes, so a holder that
	// crashed before releasing cannot block the lodge until manual cleanup.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()
	if _, err := collection.Indexes().CreateOne(ctx, lockExpiryIndex()); err != nil {
		cfg.Log.Warn("Failed to ensure lodge lock expiry index", "error", err)
	}

	return &mongoLodgeLockRepository{
		collection: collection,
	}
}

// lockExpiryIndex is a TTL index on expires_at with no grace period: documents
// become eligible for removal the moment their expiry passes.
func lockExpiryIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoLodgeLockRepository) Create(ctx context.Context, lock *model.LodgeLock) (*model.LodgeLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoLodgeLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
