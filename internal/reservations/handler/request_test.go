package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "lodgebook/pkg/errors"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockRequestService struct {
	createFunc        func(ctx context.Context, callerID string, request *model.RequestForReservation) error
	updateStatusFunc  func(ctx context.Context, callerID string, id string, update *model.RequestStatusUpdate) error
	deleteFunc        func(ctx context.Context, callerID string, id string) error
	getForGuestFunc   func(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error)
	getForHostFunc    func(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error)
	listForGuestFunc  func(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error)
	listForHostFunc   func(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error)
	existsInRangeFunc func(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error)
	cancelRequestFunc func(ctx context.Context, id string) error
}

func (m *mockRequestService) Create(ctx context.Context, callerID string, request *model.RequestForReservation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, callerID, request)
	}
	return nil
}

func (m *mockRequestService) UpdateStatus(ctx context.Context, callerID string, id string, update *model.RequestStatusUpdate) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, callerID, id, update)
	}
	return nil
}

func (m *mockRequestService) Delete(ctx context.Context, callerID string, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, callerID, id)
	}
	return nil
}

func (m *mockRequestService) GetForGuest(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error) {
	if m.getForGuestFunc != nil {
		return m.getForGuestFunc(ctx, callerID, id)
	}
	return nil, nil
}

func (m *mockRequestService) GetForHost(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error) {
	if m.getForHostFunc != nil {
		return m.getForHostFunc(ctx, callerID, id)
	}
	return nil, nil
}

func (m *mockRequestService) ListForGuest(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error) {
	if m.listForGuestFunc != nil {
		return m.listForGuestFunc(ctx, callerID, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockRequestService) ListForHost(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error) {
	if m.listForHostFunc != nil {
		return m.listForHostFunc(ctx, callerID, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockRequestService) ExistsInRange(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
	if m.existsInRangeFunc != nil {
		return m.existsInRangeFunc(ctx, lodgeID, dateFrom, dateTo)
	}
	return false, nil
}

func (m *mockRequestService) CancelRequest(ctx context.Context, id string) error {
	if m.cancelRequestFunc != nil {
		return m.cancelRequestFunc(ctx, id)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
}

func newTestRouter(svc *mockRequestService) *httprouter.Router {
	router := httprouter.New()
	NewRequestHandler(svc, testLogger()).RegisterRoutes(router)
	return router
}

func TestRequestHandler_Create(t *testing.T) {
	validBody := `{"lodge_id":"0c5f8a2e-5f8e-4c7a-9c2e-1a2b3c4d5e6f","date_from":"2024-05-02T00:00:00Z","date_to":"2024-05-04T00:00:00Z","number_of_guests":2}`

	tests := []struct {
		name       string
		caller     string
		body       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "created",
			caller:     "guest-1",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing caller header",
			caller:     "",
			body:       validBody,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			caller:     "guest-1",
			body:       `{"lodge_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "service rejects dates",
			caller:     "guest-1",
			body:       validBody,
			serviceErr: apperrors.BadRequest("No availability period covers the requested dates"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "lodge already locked",
			caller:     "guest-1",
			body:       validBody,
			serviceErr: apperrors.Conflict("The lodge is currently being booked by another request. Please try again."),
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRequestService{}
			if tt.serviceErr != nil {
				svc.createFunc = func(ctx context.Context, callerID string, request *model.RequestForReservation) error {
					return tt.serviceErr
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservation-requests", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.caller != "" {
				req.Header.Set(CallerHeader, tt.caller)
			}

			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestHandler_Create_PassesCallerToService(t *testing.T) {
	var gotCaller string
	svc := &mockRequestService{
		createFunc: func(ctx context.Context, callerID string, request *model.RequestForReservation) error {
			gotCaller = callerID
			return nil
		},
	}

	body := `{"lodge_id":"0c5f8a2e-5f8e-4c7a-9c2e-1a2b3c4d5e6f","date_from":"2024-05-02T00:00:00Z","date_to":"2024-05-04T00:00:00Z","number_of_guests":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservation-requests", strings.NewReader(body))
	req.Header.Set(CallerHeader, "guest-1")

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if gotCaller != "guest-1" {
		t.Errorf("expected caller guest-1, got %q", gotCaller)
	}
}

func TestRequestHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "resolved", wantStatus: http.StatusNoContent},
		{
			name:       "not the owner",
			serviceErr: apperrors.Forbidden("Only the lodge owner can resolve this request"),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown request",
			serviceErr: apperrors.NotFoundWithID("Reservation request", "x"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRequestService{}
			if tt.serviceErr != nil {
				svc.updateStatusFunc = func(ctx context.Context, callerID string, id string, update *model.RequestStatusUpdate) error {
					return tt.serviceErr
				}
			}

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservation-requests/id/req-1", strings.NewReader(`{"status":"APPROVED"}`))
			req.Header.Set(CallerHeader, "host-1")

			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestHandler_GetForGuest(t *testing.T) {
	svc := &mockRequestService{
		getForGuestFunc: func(ctx context.Context, callerID string, id string) (*model.RequestForReservation, error) {
			return &model.RequestForReservation{ID: id, GuestID: callerID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservation-requests/guest/req-1", nil)
	req.Header.Set(CallerHeader, "guest-1")

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data model.RequestForReservation `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != "req-1" {
		t.Errorf("expected request req-1, got %s", resp.Data.ID)
	}
}

func TestRequestHandler_ListForGuest(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
		wantOffset int64
	}{
		{name: "defaults", query: "", wantStatus: http.StatusOK, wantLimit: 10, wantOffset: 0},
		{name: "explicit pagination", query: "?limit=25&offset=50", wantStatus: http.StatusOK, wantLimit: 25, wantOffset: 50},
		{name: "negative offset clamped", query: "?offset=-5", wantStatus: http.StatusOK, wantLimit: 10, wantOffset: 0},
		{name: "invalid limit", query: "?limit=abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			var gotOffset int64
			svc := &mockRequestService{
				listForGuestFunc: func(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error) {
					gotLimit = limit
					gotOffset = offset
					return []*model.RequestForReservation{{ID: "req-1"}}, 1, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservation-requests/guest"+tt.query, nil)
			req.Header.Set(CallerHeader, "guest-1")

			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			if gotLimit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, gotLimit)
			}
			if gotOffset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, gotOffset)
			}

			var resp httputil.PaginatedResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.TotalCount != 1 {
				t.Errorf("expected total_count 1, got %d", resp.TotalCount)
			}
		})
	}
}

func TestRequestHandler_ExistsInRange(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{
			name:       "exists",
			query:      "?lodge_id=lodge-1&date_from=2024-05-02T00:00:00Z&date_to=2024-05-04T00:00:00Z",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing lodge id",
			query:      "?date_from=2024-05-02T00:00:00Z&date_to=2024-05-04T00:00:00Z",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed date",
			query:      "?lodge_id=lodge-1&date_from=02-05-2024&date_to=2024-05-04T00:00:00Z",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRequestService{
				existsInRangeFunc: func(ctx context.Context, lodgeID string, dateFrom, dateTo time.Time) (bool, error) {
					return true, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservation-requests/check/exists-in-range"+tt.query, nil)
			rec := httptest.NewRecorder()
			newTestRouter(svc).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Data map[string]bool `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if !resp.Data["exists"] {
				t.Error("expected exists to be true")
			}
		})
	}
}

func TestRequestHandler_Delete(t *testing.T) {
	var gotID string
	svc := &mockRequestService{
		deleteFunc: func(ctx context.Context, callerID string, id string) error {
			gotID = id
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/reservation-requests/id/req-1", nil)
	req.Header.Set(CallerHeader, "guest-1")

	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if gotID != "req-1" {
		t.Errorf("expected id req-1, got %s", gotID)
	}
}
