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
	ReservationCollectionName = "Reservations"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByStatusAndLodgeID(ctx context.Context, status string, lodgeID string) ([]*model.Reservation, error)
	FindByGuestID(ctx context.Context, guestID string, limit int, offset int64) ([]*model.Reservation, error)
	CountByGuestID(ctx context.Context, guestID string) (int64, error)
	FindByOwnerID(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, error)
	CountByOwnerID(ctx context.Context, ownerID string) (int64, error)
	FindByLodgeID(ctx context.Context, lodgeID string) ([]*model.Reservation, error)
	FindCancelable(ctx context.Context, guestID string, latestStart time.Time) ([]*model.Reservation, error)
	CountByGuestIDAndStatus(ctx context.Context, guestID string, status string) (int64, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error)
	ExistsByGuestAndLodge(ctx context.Context, guestID, lodgeID string) (bool, error)
	ExistsByGuestAndOwner(ctx context.Context, guestID, ownerID string) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(ReservationCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	reservation.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return nil, fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	var reservation model.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindByStatusAndLodgeID(ctx context.Context, status string, lodgeID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":   status,
		"lodge_id": lodgeID,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations by lodge and status: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) FindByGuestID(ctx context.Context, guestID string, limit int, offset int64) ([]*model.Reservation, error) {
	return r.findByField(ctx, "guest_id", guestID, limit, offset)
}

func (r *mongoReservationRepository) CountByGuestID(ctx context.Context, guestID string) (int64, error) {
	return r.countBy(ctx, bson.M{"guest_id": guestID})
}

func (r *mongoReservationRepository) FindByOwnerID(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, error) {
	return r.findByField(ctx, "owner_id", ownerID, limit, offset)
}

func (r *mongoReservationRepository) CountByOwnerID(ctx context.Context, ownerID string) (int64, error) {
	return r.countBy(ctx, bson.M{"owner_id": ownerID})
}

func (r *mongoReservationRepository) findByField(ctx context.Context, field, value string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date_from", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{field: value}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) countBy(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) FindByLodgeID(ctx context.Context, lodgeID string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date_from", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"lodge_id": lodgeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations by lodge: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

// FindCancelable returns the guest's ACTIVE reservations whose stay starts
// after latestStart, i.e. those still inside the cancellation window.
func (r *mongoReservationRepository) FindCancelable(ctx context.Context, guestID string, latestStart time.Time) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"guest_id":  guestID,
		"status":    model.ReservationActive,
		"date_from": bson.M{"$gt": latestStart},
	}

	opts := options.Find().SetSort(bson.D{{Key: "date_from", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find cancelable reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) CountByGuestIDAndStatus(ctx context.Context, guestID string, status string) (int64, error) {
	return r.countBy(ctx, bson.M{"guest_id": guestID, "status": status})
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return fmt.Errorf("%w: %s", reserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status},
	})
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.MatchedCount == 0 {
		return reserrors.ErrNotFound
	}

	return nil
}

// ExistsInRange reports whether any reservation on the lodge touches the given
// range, endpoints included, regardless of status.
func (r *mongoReservationRepository) ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"lodge_id":  lodgeID,
		"date_to":   bson.M{"$gte": dateFrom},
		"date_from": bson.M{"$lte": dateTo},
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check reservations in range: %w", err)
	}
	return count > 0, nil
}

func (r *mongoReservationRepository) ExistsByGuestAndLodge(ctx context.Context, guestID, lodgeID string) (bool, error) {
	return r.existsBy(ctx, bson.M{"guest_id": guestID, "lodge_id": lodgeID})
}

func (r *mongoReservationRepository) ExistsByGuestAndOwner(ctx context.Context, guestID, ownerID string) (bool, error) {
	return r.existsBy(ctx, bson.M{"guest_id": guestID, "owner_id": ownerID})
}

func (r *mongoReservationRepository) existsBy(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check reservation existence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
