package handler

import (
	"github.com/julienschmidt/httprouter"
)

// API bundles the reservation-request and reservation handlers behind a single
// route registration point.
type API struct {
	requests     *RequestHandler
	reservations *ReservationHandler
}

func NewAPI(requests *RequestHandler, reservations *ReservationHandler) *API {
	return &API{
		requests:     requests,
		reservations: reservations,
	}
}

func (a *API) RegisterRoutes(router *httprouter.Router) {
	a.requests.RegisterRoutes(router)
	a.reservations.RegisterRoutes(router)
}
