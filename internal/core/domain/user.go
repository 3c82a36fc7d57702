package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleCustomer = "customer"
)

// User models an authenticated actor: back-office admins, production
// employees, and portal customers.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether r is one of the recognised roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEmployee || r == RoleCustomer
}

// Channel identifies one of the three independent session-credential tracks.
// Each channel maps to exactly one required role; a token presented on a
// channel is only trusted when its user's stored role still matches.
type Channel string

const (
	ChannelAdmin  Channel = "admin"
	ChannelStaff  Channel = "staff"
	ChannelPortal Channel = "portal"
)

// RequiredRole returns the role a user must hold for this channel, or "" for
// an unknown channel.
func (c Channel) RequiredRole() string {
	switch c {
	case ChannelAdmin:
		return RoleAdmin
	case ChannelStaff:
		return RoleEmployee
	case ChannelPortal:
		return RoleCustomer
	}
	return ""
}

// Principal is the verified identity attached to a request after session
// verification: one polymorphic type for all three actor classes.
type Principal struct {
	UserID     string
	Role       string
	Channel    Channel
	CustomerID string
}
