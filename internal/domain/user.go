package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the job function that determines what a user may do.
type Role string

const (
	// RoleMR is a medical representative, the field user who owns tour plans.
	RoleMR Role = "MR"
	// RoleASM is an area sales manager who approves subordinates' plans.
	RoleASM Role = "ASM"
	// RoleAdmin has full administrative authority.
	RoleAdmin Role = "ADMIN"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleMR, RoleASM, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// CanApprove reports whether the role carries approval authority over
// submitted tour plans. The reporting chain is not modelled; any manager or
// admin may approve any submitted plan.
func (r Role) CanApprove() bool {
	return r == RoleASM || r == RoleAdmin
}

// User is a field force member. Territories lists the zones the user is
// assigned to; a FIELD_WORK tour plan entry must reference one of them.
// HQ is the user's home base, used as the default route start point.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	DisplayName  string      `json:"display_name"`
	Role         Role        `json:"role"`
	Territories  []Territory `json:"territories"`
	HQ           *GeoPoint   `json:"hq,omitempty"`
	PasswordHash string      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasTerritory reports whether the user is assigned the given territory.
func (u User) HasTerritory(id uuid.UUID) bool {
	for _, t := range u.Territories {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Caller identifies the authenticated principal of a request. It is decoded
// from the JWT by the auth middleware and passed down to services, which make
// every authorization decision from it — handlers never decide authority.
type Caller struct {
	UID  uuid.UUID
	Role Role
}
