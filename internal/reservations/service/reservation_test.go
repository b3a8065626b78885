package service

import (
	"context"
	"testing"
	"time"

	apperrors "lodgebook/pkg/errors"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
)

type reservationFixture struct {
	repo     *mockReservationRepo
	lodges   *mockLodgeDirectory
	canceled []string
	service  ReservationService
}

func newReservationFixture() *reservationFixture {
	f := &reservationFixture{
		repo:   &mockReservationRepo{},
		lodges: &mockLodgeDirectory{},
	}
	f.service = NewReservationService(f.repo, f.lodges, func(ctx context.Context, requestID string) error {
		f.canceled = append(f.canceled, requestID)
		return nil
	}, testConfig())
	return f
}

func activeReservation(id string) *model.Reservation {
	return &model.Reservation{
		ID:             id,
		LodgeID:        testLodgeID,
		GuestID:        testGuestID,
		OwnerID:        testOwnerID,
		RequestID:      uuid.NewString(),
		DateFrom:       time.Now().Add(72 * time.Hour),
		DateTo:         time.Now().Add(96 * time.Hour),
		NumberOfGuests: 2,
		Price:          120,
		Status:         model.ReservationActive,
	}
}

func TestReservationService_CreateFromRequest(t *testing.T) {
	f := newReservationFixture()

	var created *model.Reservation
	f.repo.createFunc = func(ctx context.Context, reservation *model.Reservation) error {
		created = reservation
		return nil
	}

	request := &model.RequestForReservation{
		ID:             uuid.NewString(),
		LodgeID:        testLodgeID,
		GuestID:        testGuestID,
		OwnerID:        testOwnerID,
		DateFrom:       date("2024-05-02T00:00:00Z"),
		DateTo:         date("2024-05-04T00:00:00Z"),
		NumberOfGuests: 2,
		Price:          120,
		Status:         model.RequestApproved,
	}

	reservation, err := f.service.CreateFromRequest(context.Background(), request)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected reservation to be persisted")
	}
	if reservation.RequestID != request.ID {
		t.Errorf("expected request_id %s, got %s", request.ID, reservation.RequestID)
	}
	if reservation.Status != model.ReservationActive {
		t.Errorf("expected status %s, got %s", model.ReservationActive, reservation.Status)
	}
	if reservation.LodgeID != request.LodgeID ||
		reservation.GuestID != request.GuestID ||
		reservation.OwnerID != request.OwnerID {
		t.Error("reservation must carry the request's lodge, guest and owner")
	}
	if !reservation.DateFrom.Equal(request.DateFrom) || !reservation.DateTo.Equal(request.DateTo) {
		t.Error("reservation must carry the request's date range")
	}
	if reservation.NumberOfGuests != request.NumberOfGuests || reservation.Price != request.Price {
		t.Error("reservation must carry the request's guest count and price")
	}
	if reservation.ID == "" {
		t.Error("reservation must be assigned its own id")
	}
}

func TestReservationService_Cancel(t *testing.T) {
	f := newReservationFixture()

	reservation := activeReservation(uuid.NewString())
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return reservation, nil
	}

	var updatedStatus string
	f.repo.updateStatusFunc = func(ctx context.Context, id string, status string) error {
		updatedStatus = status
		return nil
	}

	got, err := f.service.Cancel(context.Background(), testGuestID, reservation.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updatedStatus != model.ReservationCanceled {
		t.Errorf("expected status %s, got %s", model.ReservationCanceled, updatedStatus)
	}
	if got.Status != model.ReservationCanceled {
		t.Errorf("expected returned status %s, got %s", model.ReservationCanceled, got.Status)
	}
	if len(f.canceled) != 1 || f.canceled[0] != reservation.RequestID {
		t.Errorf("expected originating request %s to be voided, got %v", reservation.RequestID, f.canceled)
	}
}

func TestReservationService_Cancel_Guards(t *testing.T) {
	reservationID := uuid.NewString()

	tests := []struct {
		name     string
		caller   string
		mutate   func(r *model.Reservation)
		wantCode string
	}{
		{
			name:     "other guest cannot cancel",
			caller:   uuid.NewString(),
			mutate:   func(r *model.Reservation) {},
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:   "already canceled",
			caller: testGuestID,
			mutate: func(r *model.Reservation) {
				r.Status = model.ReservationCanceled
			},
			wantCode: apperrors.CodeBadRequest,
		},
		{
			name:   "stay starts within the notice period",
			caller: testGuestID,
			mutate: func(r *model.Reservation) {
				r.DateFrom = time.Now().Add(12 * time.Hour)
				r.DateTo = time.Now().Add(36 * time.Hour)
			},
			wantCode: apperrors.CodeBadRequest,
		},
		{
			name:   "stay already started",
			caller: testGuestID,
			mutate: func(r *model.Reservation) {
				r.DateFrom = time.Now().Add(-24 * time.Hour)
				r.DateTo = time.Now().Add(24 * time.Hour)
			},
			wantCode: apperrors.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReservationFixture()

			reservation := activeReservation(reservationID)
			tt.mutate(reservation)
			f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
				return reservation, nil
			}

			var updated bool
			f.repo.updateStatusFunc = func(ctx context.Context, id string, status string) error {
				updated = true
				return nil
			}

			_, err := f.service.Cancel(context.Background(), tt.caller, reservationID)
			assertErrorCode(t, err, tt.wantCode)
			if updated {
				t.Error("reservation must not be updated")
			}
			if len(f.canceled) != 0 {
				t.Error("originating request must not be voided")
			}
		})
	}
}

func TestReservationService_Cancel_RequestVoidFailureAborts(t *testing.T) {
	f := newReservationFixture()
	f.service = NewReservationService(f.repo, f.lodges, func(ctx context.Context, requestID string) error {
		return apperrors.NotFoundWithID("Reservation request", requestID)
	}, testConfig())

	reservation := activeReservation(uuid.NewString())
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return reservation, nil
	}

	_, err := f.service.Cancel(context.Background(), testGuestID, reservation.ID)
	assertErrorCode(t, err, apperrors.CodeNotFound)
}

func TestReservationService_ListForLodge(t *testing.T) {
	f := newReservationFixture()
	f.repo.findByLodgeIDFunc = func(ctx context.Context, lodgeID string) ([]*model.Reservation, error) {
		return []*model.Reservation{activeReservation(uuid.NewString())}, nil
	}

	t.Run("owner lists lodge reservations", func(t *testing.T) {
		reservations, err := f.service.ListForLodge(context.Background(), testOwnerID, testLodgeID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reservations) != 1 {
			t.Errorf("expected 1 reservation, got %d", len(reservations))
		}
	})

	t.Run("other host is rejected", func(t *testing.T) {
		_, err := f.service.ListForLodge(context.Background(), uuid.NewString(), testLodgeID)
		assertErrorCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("unknown lodge", func(t *testing.T) {
		f.lodges.getLodgeByIDFunc = func(ctx context.Context, id string) (*model.Lodge, error) {
			return nil, nil
		}
		defer func() { f.lodges.getLodgeByIDFunc = nil }()

		_, err := f.service.ListForLodge(context.Background(), testOwnerID, testLodgeID)
		assertErrorCode(t, err, apperrors.CodeNotFound)
	})
}

func TestReservationService_ListCancelable(t *testing.T) {
	f := newReservationFixture()

	var gotLatestStart time.Time
	f.repo.findCancelableFunc = func(ctx context.Context, guestID string, latestStart time.Time) ([]*model.Reservation, error) {
		gotLatestStart = latestStart
		return nil, nil
	}

	before := time.Now().Add(24 * time.Hour)
	if _, err := f.service.ListCancelable(context.Background(), testGuestID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().Add(24 * time.Hour)

	if gotLatestStart.Before(before) || gotLatestStart.After(after) {
		t.Errorf("expected latest start near now plus the notice period, got %s", gotLatestStart)
	}
}

func TestReservationService_CountCanceled(t *testing.T) {
	f := newReservationFixture()

	var gotStatus string
	f.repo.countByGuestAndStatusFunc = func(ctx context.Context, guestID string, status string) (int64, error) {
		gotStatus = status
		return 3, nil
	}

	count, err := f.service.CountCanceled(context.Background(), testGuestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
	if gotStatus != model.ReservationCanceled {
		t.Errorf("expected status filter %s, got %s", model.ReservationCanceled, gotStatus)
	}

	t.Run("empty guest id", func(t *testing.T) {
		_, err := f.service.CountCanceled(context.Background(), "")
		assertErrorCode(t, err, apperrors.CodeInvalidInput)
	})
}

func TestReservationService_HistoryChecks(t *testing.T) {
	f := newReservationFixture()
	f.repo.existsByGuestAndLodgeFunc = func(ctx context.Context, guestID, lodgeID string) (bool, error) {
		return true, nil
	}
	f.repo.existsByGuestAndOwnerFunc = func(ctx context.Context, guestID, ownerID string) (bool, error) {
		return false, nil
	}

	t.Run("guest stayed in lodge", func(t *testing.T) {
		exists, err := f.service.UserHadReservationInLodge(context.Background(), testGuestID, testLodgeID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !exists {
			t.Error("expected exists to be true")
		}
	})

	t.Run("guest never stayed with host", func(t *testing.T) {
		exists, err := f.service.UserHadReservationWithHost(context.Background(), testGuestID, testOwnerID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if exists {
			t.Error("expected exists to be false")
		}
	})

	t.Run("missing identifiers", func(t *testing.T) {
		if _, err := f.service.UserHadReservationInLodge(context.Background(), "", testLodgeID); err == nil {
			t.Error("expected error for empty guest id")
		}
		if _, err := f.service.UserHadReservationWithHost(context.Background(), testGuestID, ""); err == nil {
			t.Error("expected error for empty host id")
		}
	})
}

func TestReservationService_GetOwnership(t *testing.T) {
	reservation := activeReservation(uuid.NewString())

	f := newReservationFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Reservation, error) {
		return reservation, nil
	}

	t.Run("guest reads own reservation", func(t *testing.T) {
		got, err := f.service.GetForGuest(context.Background(), testGuestID, reservation.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != reservation.ID {
			t.Errorf("expected reservation %s, got %s", reservation.ID, got.ID)
		}
	})

	t.Run("other guest is rejected", func(t *testing.T) {
		_, err := f.service.GetForGuest(context.Background(), uuid.NewString(), reservation.ID)
		assertErrorCode(t, err, apperrors.CodeForbidden)
	})

	t.Run("host reads reservation for own lodge", func(t *testing.T) {
		got, err := f.service.GetForHost(context.Background(), testOwnerID, reservation.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != reservation.ID {
			t.Errorf("expected reservation %s, got %s", reservation.ID, got.ID)
		}
	})

	t.Run("other host is rejected", func(t *testing.T) {
		_, err := f.service.GetForHost(context.Background(), uuid.NewString(), reservation.ID)
		assertErrorCode(t, err, apperrors.CodeForbidden)
	})
}
