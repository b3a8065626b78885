package handler

import (
	"net/http"
	"strconv"
	"time"

	"lodgebook/pkg/config"
	apperrors "lodgebook/pkg/errors"
)

// CallerHeader carries the caller's user id, resolved by the gateway in front
// of this service.
const CallerHeader = "X-User-Id"

func callerID(r *http.Request) string {
	return r.Header.Get(CallerHeader)
}

func requireCaller(r *http.Request) (string, error) {
	id := callerID(r)
	if id == "" {
		return "", apperrors.Unauthorized("Missing " + CallerHeader + " header")
	}
	return id, nil
}

func parsePagination(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + limitStr)
		}
		limit = parsed
	}

	var offset int64
	if offsetStr := query.Get("offset"); offsetStr != "" {
		parsed, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + offsetStr)
		}
		offset = parsed
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

func parseDateRange(r *http.Request) (string, time.Time, time.Time, error) {
	query := r.URL.Query()

	lodgeID := query.Get("lodge_id")
	if lodgeID == "" {
		return "", time.Time{}, time.Time{}, apperrors.InvalidInput("'lodge_id' query parameter is required")
	}

	dateFrom, err := time.Parse(time.RFC3339, query.Get("date_from"))
	if err != nil {
		return "", time.Time{}, time.Time{}, apperrors.InvalidInput("invalid date_from, must be RFC3339")
	}

	dateTo, err := time.Parse(time.RFC3339, query.Get("date_to"))
	if err != nil {
		return "", time.Time{}, time.Time{}, apperrors.InvalidInput("invalid date_to, must be RFC3339")
	}

	return lodgeID, dateFrom, dateTo, nil
}
