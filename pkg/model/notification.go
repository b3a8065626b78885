package model

// Notification event types published to the notification service.
const (
	NotificationReservationRequest        = "RESERVATION_REQUEST"
	NotificationReservationResponseAccept = "RESERVATION_RESPONSE_ACCEPT"
	NotificationReservationResponseReject = "RESERVATION_RESPONSE_REJECT"
)

// Notification is the payload delivered to a single user. Delivery is
// at-most-once best effort.
type Notification struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}
