package domain

import (
	"time"

	"github.com/google/uuid"
)

// PunchKind distinguishes the two attendance events.
type PunchKind string

const (
	PunchIn  PunchKind = "IN"
	PunchOut PunchKind = "OUT"
)

// ParsePunchKind validates a raw punch kind string.
func ParsePunchKind(s string) (PunchKind, bool) {
	switch PunchKind(s) {
	case PunchIn, PunchOut:
		return PunchKind(s), true
	}
	return "", false
}

// AttendancePunch records one punch-in or punch-out with the location fix it
// was taken at. AccuracyMeters is the radius reported by the device's
// positioning source; larger values mean a coarser (network) fix.
type AttendancePunch struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Kind           PunchKind `json:"kind"`
	At             time.Time `json:"at"`
	Location       GeoPoint  `json:"location"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Notes          string    `json:"notes,omitempty"`
}
