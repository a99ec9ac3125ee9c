package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a single contact a field rep can visit. Customers are owned by
// a territory and are read-only to the planner — the route optimizer reorders
// a snapshot of them, it never mutates them.
// Location is nil when the customer has not been geotagged; such customers
// are dropped from routing because no distance can be computed for them.
type Customer struct {
	ID          uuid.UUID `json:"id"`
	TerritoryID uuid.UUID `json:"territory_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`      // category of contact, e.g. "DOCTOR", "CHEMIST", "STOCKIST"
	Category    string    `json:"category"`  // priority tier: "A", "B", or "C"
	Specialty   string    `json:"specialty,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Routable reports whether the customer can take part in route optimization:
// it must carry a location and that location must be within coordinate ranges.
func (c Customer) Routable() bool {
	return c.Location != nil && c.Location.Valid()
}

// Territory is a named assignment zone containing a set of customers and
// associated with one or more field users.
type Territory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
