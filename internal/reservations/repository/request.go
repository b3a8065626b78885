package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reserrors "lodgebook/internal/reservations/errors"
	"lodgebook/pkg/config"
	mongotx "lodgebook/pkg/db/mongo"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RequestCollectionName = "ReservationRequests"
)

type RequestRepository interface {
	Create(ctx context.Context, request *model.RequestForReservation) error
	FindByID(ctx context.Context, id string) (*model.RequestForReservation, error)
	FindByGuestID(ctx context.Context, guestID string, limit int, offset int64) ([]*model.RequestForReservation, error)
	CountByGuestID(ctx context.Context, guestID string) (int64, error)
	FindByOwnerID(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.RequestForReservation, error)
	CountByOwnerID(ctx context.Context, ownerID string) (int64, error)
	FindByLodgeIDAndStatus(ctx context.Context, lodgeID string, status string) ([]*model.RequestForReservation, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
	ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRequestRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(RequestCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.RequestForReservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create reservation request: %w", err)
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.RequestForReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var request model.RequestForReservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation request: %w", err)
	}

	return &request, nil
}

func (r *mongoRequestRepository) FindByGuestID(ctx context.Context, guestID string, limit int, offset int64) ([]*model.RequestForReservation, error) {
	return r.findByField(ctx, "guest_id", guestID, limit, offset)
}

func (r *mongoRequestRepository) CountByGuestID(ctx context.Context, guestID string) (int64, error) {
	return r.countByField(ctx, "guest_id", guestID)
}

func (r *mongoRequestRepository) FindByOwnerID(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.RequestForReservation, error) {
	return r.findByField(ctx, "owner_id", ownerID, limit, offset)
}

func (r *mongoRequestRepository) CountByOwnerID(ctx context.Context, ownerID string) (int64, error) {
	return r.countByField(ctx, "owner_id", ownerID)
}

func (r *mongoRequestRepository) findByField(ctx context.Context, field, value string, limit int, offset int64) ([]*model.RequestForReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date_from", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{field: value}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.RequestForReservation
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode reservation requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) countByField(ctx context.Context, field, value string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{field: value})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservation requests: %w", err)
	}
	return count, nil
}

func (r *mongoRequestRepository) FindByLodgeIDAndStatus(ctx context.Context, lodgeID string, status string) ([]*model.RequestForReservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"lodge_id": lodgeID,
		"status":   status,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservation requests by lodge: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.RequestForReservation
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode reservation requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return fmt.Errorf("failed to update reservation request status: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

func (r *mongoRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete reservation request: %w", err)
	}

	if result.DeletedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

// ExistsInRange reports whether any request on the lodge touches the given
// range, endpoints included, regardless of status. Used by other services for
// cross-service validation.
func (r *mongoRequestRepository) ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"lodge_id":  lodgeID,
		"date_to":   bson.M{"$gte": dateFrom},
		"date_from": bson.M{"$lte": dateTo},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check reservation requests in range: %w", err)
	}
	return count > 0, nil
}

func (r *mongoRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
