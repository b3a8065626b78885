package model

// User roles as reported by the user service.
const (
	RoleGuest = "GUEST"
	RoleHost  = "HOST"
	RoleAdmin = "ADMIN"
)

// User is owned by the user service; only the fields this service needs are decoded.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
