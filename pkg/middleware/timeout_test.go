package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name       string
		delay      time.Duration
		timeout    time.Duration
		wantStatus int
	}{
		{name: "fast handler passes through", delay: 0, timeout: time.Second, wantStatus: http.StatusOK},
		{name: "slow handler gets cut off", delay: 200 * time.Millisecond, timeout: 20 * time.Millisecond, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			done := make(chan struct{})
			handler := RequestTimeout(tt.timeout)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer close(done)
				select {
				case <-time.After(tt.delay):
				case <-r.Context().Done():
					return
				}
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/guest", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			// The handler goroutine keeps running after a timeout; wait for it
			// so its late writes exercise the discard path before rec is gone.
			<-done
		})
	}
}

func TestRequestTimeout_DiscardsLateWrites(t *testing.T) {
	release := make(chan struct{})
	wrote := make(chan error, 1)

	handler := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, err := w.Write([]byte("late"))
		wrote <- err
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/guest", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	close(release)
	if err := <-wrote; err != http.ErrHandlerTimeout {
		t.Errorf("expected late write to fail with ErrHandlerTimeout, got %v", err)
	}

	if got := rec.Body.String(); got != `{"error":"Request timeout"}` {
		t.Errorf("late write must not reach the response, got body %q", got)
	}
}
