package model

import "time"

// Lodge approval types.
const (
	ApprovalAutomatic = "AUTOMATIC"
	ApprovalManual    = "MANUAL"
)

// Availability period price types.
const (
	PricePerGuest = "PER_GUEST"
	PricePerLodge = "PER_LODGE"
)

// Lodge is owned by the lodge service; this service only ever reads it.
type Lodge struct {
	ID                 string `json:"id"`
	OwnerID            string `json:"owner_id"`
	Name               string `json:"name"`
	MinimalGuestNumber int    `json:"minimal_guest_number"`
	MaximalGuestNumber int    `json:"maximal_guest_number"`
	ApprovalType       string `json:"approval_type"`
}

// LodgeAvailabilityPeriod is a host-defined window during which the lodge can be
// booked, with the pricing mode and nightly rate that apply inside it.
type LodgeAvailabilityPeriod struct {
	ID        string    `json:"id"`
	LodgeID   string    `json:"lodge_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	PriceType string    `json:"price_type"`
	Price     float64   `json:"price"`
}
