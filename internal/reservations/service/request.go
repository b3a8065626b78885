package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	reserrors "lodgebook/internal/reservations/errors"
	"lodgebook/internal/reservations/notifier"
	"lodgebook/internal/reservations/repository"
	"lodgebook/internal/reservations/validator"
	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// UserDirectory is the slice of the user service this package needs.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// LodgeDirectory is the slice of the lodge service this package needs.
type LodgeDirectory interface {
	GetLodgeByID(ctx context.Context, id string) (*model.Lodge, error)
	GetAvailabilityPeriods(ctx context.Context, lodgeID string) ([]*model.LodgeAvailabilityPeriod, error)
}

// RequestService owns the reservation-request state machine. It is the sole
// writer of request status.
type RequestService interface {
	Create(ctx context.Context, callerID string, request *model.RequestForReservation) error
	UpdateStatus(ctx context.Context, callerID string, id string, update *model.RequestStatusUpdate) error
	Delete(ctx context.Context, callerID string, id string) error
	GetForGuest(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error)
	GetForHost(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error)
	ListForGuest(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error)
	ListForHost(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error)
	ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error)

	// CancelRequest forces the request to CANCELED. Reserved for the
	// reservation cancellation path; it bypasses the state-machine guards
	// so the request record always follows its reservation.
	CancelRequest(ctx context.Context, id string) error
}

type requestService struct {
	repo            repository.RequestRepository
	lockRepo        repository.LodgeLockRepository
	reservationRepo repository.ReservationRepository
	validator       *validator.RequestValidator
	users           UserDirectory
	lodges          LodgeDirectory
	notifier        notifier.Notifier
	reservations    ReservationService
	cfg             *config.Config
}

func NewRequestService(
	repo repository.RequestRepository,
	lockRepo repository.LodgeLockRepository,
	reservationRepo repository.ReservationRepository,
	validator *validator.RequestValidator,
	users UserDirectory,
	lodges LodgeDirectory,
	notifier notifier.Notifier,
	reservations ReservationService,
	cfg *config.Config,
) RequestService {
	return &requestService{
		repo:            repo,
		lockRepo:        lockRepo,
		reservationRepo: reservationRepo,
		validator:       validator,
		users:           users,
		lodges:          lodges,
		notifier:        notifier,
		reservations:    reservations,
		cfg:             cfg,
	}
}

func (s *requestService) Create(ctx context.Context, callerID string, request *model.RequestForReservation) error {
	if callerID == "" {
		return apperrors.InvalidInput("Caller identity is required")
	}

	user, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return apperrors.Internal("Failed to look up caller identity", err)
	}
	if user == nil {
		return apperrors.NotFoundWithID("User", callerID)
	}
	if user.Role != model.RoleGuest {
		return apperrors.Forbidden("Only guests can request reservations")
	}

	lodge, err := s.lodges.GetLodgeByID(ctx, request.LodgeID)
	if err != nil {
		return apperrors.Internal("Failed to look up lodge", err)
	}
	if lodge == nil {
		return apperrors.NotFoundWithID("Lodge", request.LodgeID)
	}

	if request.NumberOfGuests < lodge.MinimalGuestNumber || request.NumberOfGuests > lodge.MaximalGuestNumber {
		return apperrors.BadRequest(fmt.Sprintf(
			"Number of guests must be between %d and %d",
			lodge.MinimalGuestNumber, lodge.MaximalGuestNumber,
		))
	}

	request.GuestID = callerID
	request.OwnerID = lodge.OwnerID
	request.Status = model.RequestWaitingForResponse

	if err := s.validator.Validate(request); err != nil {
		s.cfg.Log.Warn("Reservation request validation failed", "error", err)
		return apperrors.BadRequest(err.Error())
	}

	periods, err := s.lodges.GetAvailabilityPeriods(ctx, request.LodgeID)
	if err != nil {
		return apperrors.Internal("Failed to look up availability periods", err)
	}
	if len(periods) == 0 {
		return apperrors.NotFound("Availability periods for lodge")
	}

	period := MatchAvailabilityPeriod(request.DateFrom, request.DateTo, periods)
	if period == nil {
		return apperrors.BadRequest("No availability period covers the requested dates")
	}
	request.Price = CalculatePrice(request.DateFrom, request.DateTo, request.NumberOfGuests, period)

	// The overlap check and the insert must be atomic per lodge; the
	// advisory lock closes the read-then-write race window.
	lockID, err := s.acquireLodgeLock(ctx, request.LodgeID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseLodgeLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release lodge lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	autoApproved := lodge.ApprovalType == model.ApprovalAutomatic

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, request.LodgeID, request.DateFrom, request.DateTo); err != nil {
			return err
		}

		if err := s.repo.Create(sessCtx, request); err != nil {
			return apperrors.Internal("Failed to create reservation request", err)
		}

		if autoApproved {
			if err := s.repo.UpdateStatus(sessCtx, request.ID, model.RequestApproved); err != nil {
				return apperrors.Internal("Failed to approve reservation request", err)
			}
			request.Status = model.RequestApproved

			if _, err := s.reservations.CreateFromRequest(sessCtx, request); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation request", "lodge_id", request.LodgeID, "error", err)
		return err
	}

	s.notifier.Notify(request.OwnerID, model.NotificationReservationRequest)
	if autoApproved {
		s.notifier.Notify(request.GuestID, model.NotificationReservationResponseAccept)
	}

	s.cfg.Log.Info("Reservation request created",
		"id", request.ID,
		"lodge_id", request.LodgeID,
		"guest_id", request.GuestID,
		"status", request.Status,
		"price", request.Price,
	)
	return nil
}

func (s *requestService) UpdateStatus(ctx context.Context, callerID string, id string, update *model.RequestStatusUpdate) error {
	if callerID == "" {
		return apperrors.InvalidInput("Caller identity is required")
	}

	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return apperrors.BadRequest(err.Error())
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return err
	}

	if request.Status != model.RequestWaitingForResponse {
		return apperrors.BadRequest("Reservation request is not awaiting a response")
	}

	lodge, err := s.lodges.GetLodgeByID(ctx, request.LodgeID)
	if err != nil {
		return apperrors.Internal("Failed to look up lodge", err)
	}
	if lodge == nil {
		return apperrors.NotFoundWithID("Lodge", request.LodgeID)
	}
	if lodge.OwnerID != callerID {
		return apperrors.Forbidden("Only the lodge owner can resolve this request")
	}
	if lodge.ApprovalType != model.ApprovalManual {
		return apperrors.BadRequest("Requests for this lodge are resolved automatically")
	}

	// Availability may have been withdrawn since the request was created.
	// Both host decisions pass through this check: a request whose period is
	// gone can no longer be resolved, it is cascade-denied along with every
	// waiting request overlapping it.
	periods, err := s.lodges.GetAvailabilityPeriods(ctx, request.LodgeID)
	if err != nil {
		return apperrors.Internal("Failed to look up availability periods", err)
	}
	if MatchAvailabilityPeriod(request.DateFrom, request.DateTo, periods) == nil {
		return s.cascadeDeny(ctx, request)
	}

	if update.Status == model.RequestDenied {
		if err := s.repo.UpdateStatus(ctx, id, model.RequestDenied); err != nil {
			return apperrors.Internal("Failed to deny reservation request", err)
		}
		s.notifier.Notify(request.GuestID, model.NotificationReservationResponseReject)
		s.cfg.Log.Info("Reservation request denied", "id", id, "lodge_id", request.LodgeID)
		return nil
	}

	return s.approve(ctx, request)
}

// approve handles the host → APPROVED transition. The caller has already
// verified the availability period still covers the request.
func (s *requestService) approve(ctx context.Context, request *model.RequestForReservation) error {
	lockID, err := s.acquireLodgeLock(ctx, request.LodgeID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseLodgeLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release lodge lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, request.LodgeID, request.DateFrom, request.DateTo); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(sessCtx, request.ID, model.RequestApproved); err != nil {
			return apperrors.Internal("Failed to approve reservation request", err)
		}
		request.Status = model.RequestApproved

		if _, err := s.reservations.CreateFromRequest(sessCtx, request); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to approve reservation request", "id", request.ID, "error", err)
		return err
	}

	s.notifier.Notify(request.GuestID, model.NotificationReservationResponseAccept)
	s.cfg.Log.Info("Reservation request approved", "id", request.ID, "lodge_id", request.LodgeID)
	return nil
}

// cascadeDeny denies the current request and every other waiting request on
// the lodge whose range closed-interval-overlaps it. The denials are committed
// in their own transaction so the BadRequest returned afterwards does not roll
// them back.
func (s *requestService) cascadeDeny(ctx context.Context, request *model.RequestForReservation) error {
	waiting, err := s.repo.FindByLodgeIDAndStatus(ctx, request.LodgeID, model.RequestWaitingForResponse)
	if err != nil {
		return apperrors.Internal("Failed to find waiting reservation requests", err)
	}

	denied := conflictingRequests(waiting, request.DateFrom, request.DateTo)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, conflict := range denied {
			if err := s.repo.UpdateStatus(sessCtx, conflict.ID, model.RequestDenied); err != nil {
				return apperrors.Internal("Failed to cascade-deny reservation request", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Cascade denial failed", "id", request.ID, "lodge_id", request.LodgeID, "error", err)
		return err
	}

	for _, conflict := range denied {
		s.notifier.Notify(conflict.GuestID, model.NotificationReservationResponseReject)
	}

	s.cfg.Log.Info("Cascade denial after availability withdrawal",
		"id", request.ID,
		"lodge_id", request.LodgeID,
		"denied_count", len(denied),
	)
	return apperrors.BadRequest("Availability period no longer covers the requested dates")
}

func (s *requestService) Delete(ctx context.Context, callerID string, id string) error {
	if callerID == "" {
		return apperrors.InvalidInput("Caller identity is required")
	}

	request, err := s.findRequest(ctx, id)
	if err != nil {
		return err
	}

	if request.GuestID != callerID {
		return apperrors.Forbidden("Only the requesting guest can withdraw this request")
	}
	if request.Status != model.RequestWaitingForResponse {
		return apperrors.BadRequest("Only waiting reservation requests can be withdrawn")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation request", id)
		}
		return apperrors.Internal("Failed to delete reservation request", err)
	}

	s.cfg.Log.Info("Reservation request withdrawn", "id", id, "guest_id", callerID)
	return nil
}

func (s *requestService) GetForGuest(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.GuestID != callerID {
		return nil, apperrors.Forbidden("Reservation request belongs to another guest")
	}
	return request, nil
}

func (s *requestService) GetForHost(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error) {
	request, err := s.findRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != callerID {
		return nil, apperrors.Forbidden("Reservation request belongs to another host's lodge")
	}
	return request, nil
}

func (s *requestService) ListForGuest(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error) {
	return s.list(ctx, callerID, limit, offset, s.repo.FindByGuestID, s.repo.CountByGuestID)
}

func (s *requestService) ListForHost(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error) {
	return s.list(ctx, callerID, limit, offset, s.repo.FindByOwnerID, s.repo.CountByOwnerID)
}

func (s *requestService) list(
	ctx context.Context,
	callerID string,
	limit int,
	offset int64,
	find func(ctx context.Context, id string, limit int, offset int64) ([]*model.RequestForReservation, error),
	count func(ctx context.Context, id string) (int64, error),
) ([]*model.RequestForReservation, int64, error) {
	if callerID == "" {
		return nil, 0, apperrors.InvalidInput("Caller identity is required")
	}

	var total int64
	var requests []*model.RequestForReservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx, callerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservation requests", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservation requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = find(ctx, callerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservation requests", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservation requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, total, nil
}

func (s *requestService) ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
	if lodgeID == "" {
		return false, apperrors.InvalidInput("Lodge ID cannot be empty")
	}

	exists, err := s.repo.ExistsInRange(ctx, lodgeID, dateFrom, dateTo)
	if err != nil {
		return false, apperrors.Internal("Failed to check reservation requests in range", err)
	}
	return exists, nil
}

func (s *requestService) CancelRequest(ctx context.Context, id string) error {
	if err := s.repo.UpdateStatus(ctx, id, model.RequestCanceled); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation request", id)
		}
		return apperrors.Internal("Failed to cancel reservation request", err)
	}
	return nil
}

// --- Helpers ---

func (s *requestService) findRequest(ctx context.Context, id string) (*model.RequestForReservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation request", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation request", err)
	}
	return request, nil
}

// verifyNoOverlap enforces admission: the candidate range may not open-interval
// overlap any APPROVED request or ACTIVE reservation on the lodge.
func (s *requestService) verifyNoOverlap(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) error {
	approved, err := s.repo.FindByLodgeIDAndStatus(ctx, lodgeID, model.RequestApproved)
	if err != nil {
		return apperrors.Internal("Failed to check approved reservation requests", err)
	}
	for _, existing := range approved {
		if OverlapsOpen(existing.DateFrom, existing.DateTo, dateFrom, dateTo) {
			return apperrors.BadRequest(fmt.Sprintf(
				"Dates overlap an approved reservation request (%s - %s)",
				existing.DateFrom.Format(time.RFC3339),
				existing.DateTo.Format(time.RFC3339),
			))
		}
	}

	active, err := s.reservationRepo.FindByStatusAndLodgeID(ctx, model.ReservationActive, lodgeID)
	if err != nil {
		return apperrors.Internal("Failed to check active reservations", err)
	}
	for _, existing := range active {
		if OverlapsOpen(existing.DateFrom, existing.DateTo, dateFrom, dateTo) {
			return apperrors.BadRequest(fmt.Sprintf(
				"Dates overlap an active reservation (%s - %s)",
				existing.DateFrom.Format(time.RFC3339),
				existing.DateTo.Format(time.RFC3339),
			))
		}
	}

	return nil
}

// acquireLodgeLock serializes validate-then-write sequences per lodge.
// Returns Conflict if another request currently holds the lodge.
func (s *requestService) acquireLodgeLock(ctx context.Context, lodgeID string) (string, error) {
	lockID := fmt.Sprintf("lodge_lock_%s", lodgeID)

	lock := &model.LodgeLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.LodgeLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("The lodge is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire lodge lock", err)
	}

	return lockID, nil
}

func (s *requestService) releaseLodgeLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
