package service

import (
	"time"

	"lodgebook/pkg/model"
)

// OverlapsOpen is the admission overlap test: ranges sharing only an endpoint
// do not conflict, so a stay may begin the day another ends.
func OverlapsOpen(existingFrom, existingTo, candidateFrom, candidateTo time.Time) bool {
	return existingTo.After(candidateFrom) && existingFrom.Before(candidateTo)
}

// OverlapsClosed is the cascade-denial overlap test: touching endpoints DO
// conflict. Denial after an availability withdrawal is deliberately more
// conservative than admission.
func OverlapsClosed(existingFrom, existingTo, candidateFrom, candidateTo time.Time) bool {
	return !existingTo.Before(candidateFrom) && !existingFrom.After(candidateTo)
}

// conflictingRequests returns the subset of requests whose range
// closed-interval-overlaps the candidate range. Never errors; the caller
// decides what to do with the conflicts.
func conflictingRequests(requests []*model.RequestForReservation, dateFrom, dateTo time.Time) []*model.RequestForReservation {
	var conflicts []*model.RequestForReservation
	for _, request := range requests {
		if OverlapsClosed(request.DateFrom, request.DateTo, dateFrom, dateTo) {
			conflicts = append(conflicts, request)
		}
	}
	return conflicts
}
