package model

import (
	"time"
)

// Reservation statuses. Cancellation is irreversible.
const (
	ReservationActive   = "ACTIVE"
	ReservationCanceled = "CANCELED"
)

// Reservation is the binding outcome of an approved request. It is created at
// most once per request and copies the request's lodge, parties, dates and price.
type Reservation struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	LodgeID        string    `json:"lodge_id" bson:"lodge_id" validate:"required,uuid4"`
	GuestID        string    `json:"guest_id" bson:"guest_id" validate:"required,uuid4"`
	OwnerID        string    `json:"owner_id" bson:"owner_id" validate:"required,uuid4"`
	RequestID      string    `json:"request_id" bson:"request_id" validate:"required,uuid4"`
	DateFrom       time.Time `json:"date_from" bson:"date_from" validate:"required"`
	DateTo         time.Time `json:"date_to" bson:"date_to" validate:"required,gtfield=DateFrom"`
	NumberOfGuests int       `json:"number_of_guests" bson:"number_of_guests" validate:"required,min=1"`
	Price          float64   `json:"price" bson:"price" validate:"omitempty,min=0"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=ACTIVE CANCELED"`
	CreatedAt      time.Time `json:"created_at,omitempty" bson:"created_at"`
}
