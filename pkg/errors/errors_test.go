package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{name: "not found", err: NotFound("Lodge"), wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "bad request", err: BadRequest("bad dates"), wantCode: CodeBadRequest, wantStatus: http.StatusBadRequest},
		{name: "invalid input", err: InvalidInput("missing id"), wantCode: CodeInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("missing header"), wantCode: CodeUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("not yours"), wantCode: CodeForbidden, wantStatus: http.StatusForbidden},
		{name: "conflict", err: Conflict("lodge busy"), wantCode: CodeConflict, wantStatus: http.StatusConflict},
		{name: "internal", err: Internal("boom", nil), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.HTTPStatus)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Failed to look up lodge", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Reservation", "res-1")

	if err.Details["resource"] != "Reservation" || err.Details["id"] != "res-1" {
		t.Errorf("unexpected details: %+v", err.Details)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := BadRequest("bad")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected existing AppError to pass through unchanged")
	}

	wrapped := AsAppError(errors.New("plain"))
	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain errors to map to %s, got %s", CodeInternal, wrapped.Code)
	}
}
