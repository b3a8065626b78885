package model

import (
	"time"
)

// RequestForReservation statuses. A request starts out waiting and is moved
// exactly once to APPROVED, DENIED or CANCELED by the lifecycle service.
const (
	RequestWaitingForResponse = "WAITING_FOR_RESPONSE"
	RequestApproved           = "APPROVED"
	RequestDenied             = "DENIED"
	RequestCanceled           = "CANCELED"
)

type RequestForReservation struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	LodgeID        string    `json:"lodge_id" bson:"lodge_id" validate:"required,uuid4"`
	GuestID        string    `json:"guest_id,omitempty" bson:"guest_id" validate:"omitempty,uuid4"`
	OwnerID        string    `json:"owner_id,omitempty" bson:"owner_id" validate:"omitempty,uuid4"`
	DateFrom       time.Time `json:"date_from" bson:"date_from" validate:"required"`
	DateTo         time.Time `json:"date_to" bson:"date_to" validate:"required,gtfield=DateFrom"`
	NumberOfGuests int       `json:"number_of_guests" bson:"number_of_guests" validate:"required,min=1"`
	Price          float64   `json:"price" bson:"price" validate:"omitempty,min=0"`
	Status         string    `json:"status,omitempty" bson:"status" validate:"omitempty,oneof=WAITING_FOR_RESPONSE APPROVED DENIED CANCELED"`
	CreatedAt      time.Time `json:"created_at,omitempty" bson:"created_at"`
}

// RequestStatusUpdate is the payload a host sends to resolve a waiting request.
type RequestStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=APPROVED DENIED"`
}
