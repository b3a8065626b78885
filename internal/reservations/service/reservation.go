package service

import (
	"context"
	"errors"
	"sync"
	"time"

	reserrors "lodgebook/internal/reservations/errors"
	"lodgebook/internal/reservations/repository"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequestCanceler voids the originating request when its reservation is
// canceled. Bound to RequestService.CancelRequest in main; keeps the call
// graph one-directional.
type RequestCanceler func(ctx context.Context, requestID string) error

// ReservationService materializes approved requests into reservations and
// manages cancellation under the notice-window policy.
type ReservationService interface {
	CreateFromRequest(ctx context.Context, request *model.RequestForReservation) (*model.Reservation, error)
	Cancel(ctx context.Context, callerID string, id string) (*model.Reservation, error)
	GetForGuest(ctx context.Context, callerID string, id string) (*model.Reservation, error)
	GetForHost(ctx context.Context, callerID string, id string) (*model.Reservation, error)
	ListForGuest(ctx context.Context, callerID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	ListForHost(ctx context.Context, callerID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	ListForLodge(ctx context.Context, callerID string, lodgeID string) ([]*model.Reservation, error)
	ListCancelable(ctx context.Context, callerID string) ([]*model.Reservation, error)
	CountCanceled(ctx context.Context, guestID string) (int64, error)
	ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error)
	UserHadReservationInLodge(ctx context.Context, guestID, lodgeID string) (bool, error)
	UserHadReservationWithHost(ctx context.Context, guestID, hostID string) (bool, error)
}

type reservationService struct {
	repo          repository.ReservationRepository
	lodges        LodgeDirectory
	cancelRequest RequestCanceler
	cfg           *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lodges LodgeDirectory,
	cancelRequest RequestCanceler,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:          repo,
		lodges:        lodges,
		cancelRequest: cancelRequest,
		cfg:           cfg,
	}
}

// CreateFromRequest copies the approved request into an ACTIVE reservation.
// The lifecycle controller calls it exactly once per request, inside the
// approval transaction.
func (s *reservationService) CreateFromRequest(ctx context.Context, request *model.RequestForReservation) (*model.Reservation, error) {
	reservation := &model.Reservation{
		ID:             uuid.NewString(),
		LodgeID:        request.LodgeID,
		GuestID:        request.GuestID,
		OwnerID:        request.OwnerID,
		RequestID:      request.ID,
		DateFrom:       request.DateFrom,
		DateTo:         request.DateTo,
		NumberOfGuests: request.NumberOfGuests,
		Price:          request.Price,
		Status:         model.ReservationActive,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	s.cfg.Log.Info("Reservation created",
		"id", reservation.ID,
		"request_id", reservation.RequestID,
		"lodge_id", reservation.LodgeID,
	)
	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, callerID string, id string) (*model.Reservation, error) {
	if callerID == "" {
		return nil, apperrors.InvalidInput("Caller identity is required")
	}

	reservation, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if reservation.GuestID != callerID {
		return nil, apperrors.Forbidden("Reservation belongs to another guest")
	}
	if reservation.Status != model.ReservationActive {
		return nil, apperrors.BadRequest("Reservation is not active")
	}
	if !time.Now().Add(s.cfg.CancelNotice).Before(reservation.DateFrom) {
		return nil, apperrors.BadRequest("Reservations can only be canceled at least one day before the stay begins")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, model.ReservationCanceled); err != nil {
			return apperrors.Internal("Failed to cancel reservation", err)
		}
		if err := s.cancelRequest(sessCtx, reservation.RequestID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, err
	}

	reservation.Status = model.ReservationCanceled

	s.cfg.Log.Info("Reservation canceled",
		"id", id,
		"request_id", reservation.RequestID,
		"guest_id", callerID,
	)
	return reservation, nil
}

func (s *reservationService) GetForGuest(ctx context.Context, callerID string, id string) (*model.Reservation, error) {
	reservation, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.GuestID != callerID {
		return nil, apperrors.Forbidden("Reservation belongs to another guest")
	}
	return reservation, nil
}

func (s *reservationService) GetForHost(ctx context.Context, callerID string, id string) (*model.Reservation, error) {
	reservation, err := s.findReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.OwnerID != callerID {
		return nil, apperrors.Forbidden("Reservation belongs to another host's lodge")
	}
	return reservation, nil
}

func (s *reservationService) ListForGuest(ctx context.Context, callerID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return s.list(ctx, callerID, limit, offset, s.repo.FindByGuestID, s.repo.CountByGuestID)
}

func (s *reservationService) ListForHost(ctx context.Context, callerID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return s.list(ctx, callerID, limit, offset, s.repo.FindByOwnerID, s.repo.CountByOwnerID)
}

func (s *reservationService) list(
	ctx context.Context,
	callerID string,
	limit int,
	offset int64,
	find func(ctx context.Context, id string, limit int, offset int64) ([]*model.Reservation, error),
	count func(ctx context.Context, id string) (int64, error),
) ([]*model.Reservation, int64, error) {
	if callerID == "" {
		return nil, 0, apperrors.InvalidInput("Caller identity is required")
	}

	var total int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx, callerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = find(ctx, callerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, total, nil
}

func (s *reservationService) ListForLodge(ctx context.Context, callerID string, lodgeID string) ([]*model.Reservation, error) {
	if callerID == "" {
		return nil, apperrors.InvalidInput("Caller identity is required")
	}
	if lodgeID == "" {
		return nil, apperrors.InvalidInput("Lodge ID cannot be empty")
	}

	lodge, err := s.lodges.GetLodgeByID(ctx, lodgeID)
	if err != nil {
		return nil, apperrors.Internal("Failed to look up lodge", err)
	}
	if lodge == nil {
		return nil, apperrors.NotFoundWithID("Lodge", lodgeID)
	}
	if lodge.OwnerID != callerID {
		return nil, apperrors.Forbidden("Lodge belongs to another host")
	}

	reservations, err := s.repo.FindByLodgeID(ctx, lodgeID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservations for lodge", err)
	}
	return reservations, nil
}

// ListCancelable returns the caller's reservations that can still be canceled,
// i.e. ACTIVE ones starting more than the notice period from now.
func (s *reservationService) ListCancelable(ctx context.Context, callerID string) ([]*model.Reservation, error) {
	if callerID == "" {
		return nil, apperrors.InvalidInput("Caller identity is required")
	}

	latestStart := time.Now().Add(s.cfg.CancelNotice)
	reservations, err := s.repo.FindCancelable(ctx, callerID, latestStart)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve cancelable reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) CountCanceled(ctx context.Context, guestID string) (int64, error) {
	if guestID == "" {
		return 0, apperrors.InvalidInput("Guest ID cannot be empty")
	}

	count, err := s.repo.CountByGuestIDAndStatus(ctx, guestID, model.ReservationCanceled)
	if err != nil {
		return 0, apperrors.Internal("Failed to count canceled reservations", err)
	}
	return count, nil
}

func (s *reservationService) ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
	if lodgeID == "" {
		return false, apperrors.InvalidInput("Lodge ID cannot be empty")
	}

	exists, err := s.repo.ExistsInRange(ctx, lodgeID, dateFrom, dateTo)
	if err != nil {
		return false, apperrors.Internal("Failed to check reservations in range", err)
	}
	return exists, nil
}

func (s *reservationService) UserHadReservationInLodge(ctx context.Context, guestID, lodgeID string) (bool, error) {
	if guestID == "" || lodgeID == "" {
		return false, apperrors.InvalidInput("Guest ID and lodge ID are required")
	}

	exists, err := s.repo.ExistsByGuestAndLodge(ctx, guestID, lodgeID)
	if err != nil {
		return false, apperrors.Internal("Failed to check guest reservations for lodge", err)
	}
	return exists, nil
}

func (s *reservationService) UserHadReservationWithHost(ctx context.Context, guestID, hostID string) (bool, error) {
	if guestID == "" || hostID == "" {
		return false, apperrors.InvalidInput("Guest ID and host ID are required")
	}

	exists, err := s.repo.ExistsByGuestAndOwner(ctx, guestID, hostID)
	if err != nil {
		return false, apperrors.Internal("Failed to check guest reservations with host", err)
	}
	return exists, nil
}

// --- Helpers ---

func (s *reservationService) findReservation(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return reservation, nil
}
