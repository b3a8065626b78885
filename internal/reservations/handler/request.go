package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"lodgebook/internal/reservations/service"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RequestHandler struct {
	service service.RequestService
	log     *logger.Logger
}

func NewRequestHandler(service service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{
		service: service,
		log:     log,
	}
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var request model.RequestForReservation
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), caller, &request); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, request); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var update model.RequestStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateStatus(r.Context(), caller, ps.ByName("id"), &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RequestHandler) GetForGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "GetForGuest", err)
		return
	}

	request, err := h.service.GetForGuest(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetForGuest", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForGuest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) GetForHost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "GetForHost", err)
		return
	}

	request, err := h.service.GetForHost(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetForHost", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) ListForGuest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListForGuest", h.service.ListForGuest)
}

func (h *RequestHandler) ListForHost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListForHost", h.service.ListForHost)
}

func (h *RequestHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	listFn func(ctx context.Context, callerID string, limit int, offset int64) ([]*model.RequestForReservation, int64, error),
) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	requests, total, err := listFn(r.Context(), caller, limit, offset)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WritePaginated(w, requests, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

func (h *RequestHandler) ExistsInRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lodgeID, dateFrom, dateTo, err := parseDateRange(r)
	if err != nil {
		h.writeError(w, "ExistsInRange", err)
		return
	}

	exists, err := h.service.ExistsInRange(r.Context(), lodgeID, dateFrom, dateTo)
	if err != nil {
		h.writeError(w, "ExistsInRange", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"exists": exists}); err != nil {
		h.log.Error("failed to write success response", "handler", "ExistsInRange", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RequestHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservation-requests", h.Create)
	router.PATCH("/api/v1/reservation-requests/id/:id", h.UpdateStatus)
	router.DELETE("/api/v1/reservation-requests/id/:id", h.Delete)
	router.GET("/api/v1/reservation-requests/guest", h.ListForGuest)
	router.GET("/api/v1/reservation-requests/guest/:id", h.GetForGuest)
	router.GET("/api/v1/reservation-requests/host", h.ListForHost)
	router.GET("/api/v1/reservation-requests/host/:id", h.GetForHost)
	router.GET("/api/v1/reservation-requests/check/exists-in-range", h.ExistsInRange)
}
