package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newIdempotentHandler(store IdempotencyStore, status int) (http.Handler, *int) {
	calls := 0
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"attempt":%d}`, calls)
	})
	return Idempotency(store, "Idempotency-Key")(handler), &calls
}

func doRequest(handler http.Handler, caller, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservation-requests", nil)
	if caller != "" {
		req.Header.Set("X-User-Id", caller)
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysCachedResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	handler, calls := newIdempotentHandler(store, http.StatusCreated)

	first := doRequest(handler, "guest-1", "key-1")
	second := doRequest(handler, "guest-1", "key-1")

	if *calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", *calls)
	}
	if second.Code != first.Code {
		t.Errorf("expected replayed status %d, got %d", first.Code, second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("expected replayed body %q, got %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_KeysAreCallerScoped(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	handler, calls := newIdempotentHandler(store, http.StatusCreated)

	doRequest(handler, "guest-1", "key-1")
	other := doRequest(handler, "guest-2", "key-1")

	if *calls != 2 {
		t.Errorf("expected handler to run for each caller, ran %d times", *calls)
	}
	if other.Body.String() != `{"attempt":2}` {
		t.Errorf("second caller must not see the first caller's response, got %q", other.Body.String())
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	handler, calls := newIdempotentHandler(store, http.StatusConflict)

	doRequest(handler, "guest-1", "key-1")
	doRequest(handler, "guest-1", "key-1")

	if *calls != 2 {
		t.Errorf("rejected attempts must be retryable, handler ran %d times", *calls)
	}
}

func TestIdempotency_PassThroughWithoutKey(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	handler, calls := newIdempotentHandler(store, http.StatusCreated)

	doRequest(handler, "guest-1", "")
	doRequest(handler, "guest-1", "")

	if *calls != 2 {
		t.Errorf("expected handler to run each time without a key, ran %d times", *calls)
	}
}
