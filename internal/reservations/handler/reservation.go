package handler

import (
	"context"
	"net/http"

	"lodgebook/internal/reservations/service"
	httputil "lodgebook/pkg/http"
	"lodgebook/pkg/logger"
	"lodgebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	reservation, err := h.service.Cancel(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetForGuest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "GetForGuest", err)
		return
	}

	reservation, err := h.service.GetForGuest(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetForGuest", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForGuest", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetForHost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "GetForHost", err)
		return
	}

	reservation, err := h.service.GetForHost(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetForHost", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetForHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListForGuest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListForGuest", h.service.ListForGuest)
}

func (h *ReservationHandler) ListForHost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "ListForHost", h.service.ListForHost)
}

func (h *ReservationHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	listFn func(ctx context.Context, callerID string, limit int, offset int64) ([]*model.Reservation, int64, error),
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

	reservations, total, err := listFn(r.Context(), caller, limit, offset)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) ListForLodge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "ListForLodge", err)
		return
	}

	reservations, err := h.service.ListForLodge(r.Context(), caller, ps.ByName("lodgeId"))
	if err != nil {
		h.writeError(w, "ListForLodge", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForLodge", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ListCancelable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := requireCaller(r)
	if err != nil {
		h.writeError(w, "ListCancelable", err)
		return
	}

	reservations, err := h.service.ListCancelable(r.Context(), caller)
	if err != nil {
		h.writeError(w, "ListCancelable", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCancelable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) CountCanceled(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	count, err := h.service.CountCanceled(r.Context(), ps.ByName("guestId"))
	if err != nil {
		h.writeError(w, "CountCanceled", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]int64{"count": count}); err != nil {
		h.log.Error("failed to write success response", "handler", "CountCanceled", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) ExistsInRange(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

func (h *ReservationHandler) UserHadReservationInLodge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	exists, err := h.service.UserHadReservationInLodge(r.Context(), ps.ByName("guestId"), ps.ByName("lodgeId"))
	if err != nil {
		h.writeError(w, "UserHadReservationInLodge", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"exists": exists}); err != nil {
		h.log.Error("failed to write success response", "handler", "UserHadReservationInLodge", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) UserHadReservationWithHost(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	exists, err := h.service.UserHadReservationWithHost(r.Context(), ps.ByName("guestId"), ps.ByName("hostId"))
	if err != nil {
		h.writeError(w, "UserHadReservationWithHost", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]bool{"exists": exists}); err != nil {
		h.log.Error("failed to write success response", "handler", "UserHadReservationWithHost", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/reservations/guest", h.ListForGuest)
	router.GET("/api/v1/reservations/guest/:id", h.GetForGuest)
	router.GET("/api/v1/reservations/host", h.ListForHost)
	router.GET("/api/v1/reservations/host/:id", h.GetForHost)
	router.GET("/api/v1/reservations/lodge/:lodgeId", h.ListForLodge)
	router.GET("/api/v1/reservations/cancelable", h.ListCancelable)
	router.GET("/api/v1/reservations/canceled/count/:guestId", h.CountCanceled)
	router.GET("/api/v1/reservations/check/exists-in-range", h.ExistsInRange)
	router.GET("/api/v1/reservations/check/user-had-reservation/:guestId/:lodgeId", h.UserHadReservationInLodge)
	router.GET("/api/v1/reservations/check/user-had-reservation-with-host/:guestId/:hostId", h.UserHadReservationWithHost)
}
