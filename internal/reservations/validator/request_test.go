package validator

import (
	"io"
	"testing"
	"time"

	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/google/uuid"
)

func testValidator() *RequestValidator {
	return NewRequestValidator(logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	}))
}

func validRequest() *model.RequestForReservation {
	return &model.RequestForReservation{
		LodgeID:        uuid.NewString(),
		GuestID:        uuid.NewString(),
		OwnerID:        uuid.NewString(),
		DateFrom:       time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		DateTo:         time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		Status:         model.RequestWaitingForResponse,
	}
}

func TestRequestValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.RequestForReservation)
		wantErr bool
	}{
		{
			name:   "valid request",
			mutate: func(r *model.RequestForReservation) {},
		},
		{
			name: "exactly one day stay",
			mutate: func(r *model.RequestForReservation) {
				r.DateTo = r.DateFrom.Add(24 * time.Hour)
			},
		},
		{
			name: "missing lodge id",
			mutate: func(r *model.RequestForReservation) {
				r.LodgeID = ""
			},
			wantErr: true,
		},
		{
			name: "lodge id is not a UUID",
			mutate: func(r *model.RequestForReservation) {
				r.LodgeID = "lodge-1"
			},
			wantErr: true,
		},
		{
			name: "date_to before date_from",
			mutate: func(r *model.RequestForReservation) {
				r.DateTo = r.DateFrom.Add(-24 * time.Hour)
			},
			wantErr: true,
		},
		{
			name: "equal dates",
			mutate: func(r *model.RequestForReservation) {
				r.DateTo = r.DateFrom
			},
			wantErr: true,
		},
		{
			name: "stay shorter than a day",
			mutate: func(r *model.RequestForReservation) {
				r.DateTo = r.DateFrom.Add(23 * time.Hour)
			},
			wantErr: true,
		},
		{
			name: "zero guests",
			mutate: func(r *model.RequestForReservation) {
				r.NumberOfGuests = 0
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			mutate: func(r *model.RequestForReservation) {
				r.Status = "PENDING"
			},
			wantErr: true,
		},
	}

	v := testValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := validRequest()
			tt.mutate(request)

			err := v.Validate(request)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestRequestValidator_ValidateStatusUpdate(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "approve", status: model.RequestApproved},
		{name: "deny", status: model.RequestDenied},
		{name: "waiting is not a host decision", status: model.RequestWaitingForResponse, wantErr: true},
		{name: "canceled is not a host decision", status: model.RequestCanceled, wantErr: true},
		{name: "empty status", status: "", wantErr: true},
	}

	v := testValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStatusUpdate(&model.RequestStatusUpdate{Status: tt.status})
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "LodgeID", Message: "LodgeID is required"},
		{Field: "DateTo", Message: "DateTo must be after DateFrom"},
	}

	msg := errs.Error()
	if msg == "" {
		t.Fatal("expected a non-empty message")
	}
	if ValidationErrors(nil).Error() != "" {
		t.Error("empty error list must render as empty string")
	}
}
