package service

import (
	"time"

	"lodgebook/pkg/model"
)

const day = 24 * time.Hour

// MatchAvailabilityPeriod returns the first period that fully contains the
// candidate range, endpoints inclusive, in the order the lodge service supplied
// them. Returns nil if no period qualifies. Callers must not depend on which
// period wins when several cover the same range.
func MatchAvailabilityPeriod(dateFrom, dateTo time.Time, periods []*model.LodgeAvailabilityPeriod) *model.LodgeAvailabilityPeriod {
	for _, period := range periods {
		if period == nil {
			continue
		}
		if !period.DateFrom.After(dateFrom) && !period.DateTo.Before(dateTo) {
			return period
		}
	}
	return nil
}

// CalculatePrice prices a stay against a matched availability period. Whole
// days are counted between the endpoints and any sub-day remainder bills as a
// full extra day. An unrecognized price type yields 0 rather than an error.
func CalculatePrice(dateFrom, dateTo time.Time, numberOfGuests int, period *model.LodgeAvailabilityPeriod) float64 {
	days := stayDays(dateFrom, dateTo)

	switch period.PriceType {
	case model.PricePerGuest:
		return float64(days) * float64(numberOfGuests) * period.Price
	case model.PricePerLodge:
		return float64(days) * period.Price
	default:
		return 0
	}
}

func stayDays(dateFrom, dateTo time.Time) int64 {
	span := dateTo.Sub(dateFrom)
	days := int64(span / day)
	if span%day > 0 {
		days++
	}
	return days
}
