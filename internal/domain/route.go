package domain

import "github.com/google/uuid"

// RouteSuggestion is the optimizer's output for one tour plan day: the
// territory's routable customers in visit order, starting from Start.
// FromCache reports whether the order was served from the route cache rather
// than recomputed.
type RouteSuggestion struct {
	Date        string     `json:"date"`
	TerritoryID uuid.UUID  `json:"territory_id"`
	Start       GeoPoint   `json:"start"`
	Customers   []Customer `json:"customers"`
	FromCache   bool       `json:"from_cache"`
}
