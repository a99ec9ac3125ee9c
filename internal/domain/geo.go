// Package domain contains the core data types for the field force tour
// planning API. This package has zero external dependencies beyond uuid and
// is imported by every other internal package (repo, service, handler).
package domain

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// GeoPoint is an immutable latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within the WGS84 coordinate ranges.
// Records with out-of-range coordinates are excluded from routing rather than
// defaulted to (0,0).
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the great-circle (haversine) distance between a and b in
// meters. The choice of haversine over planar Euclidean distance is fixed:
// routes are compared by real-world meters, and the tie-break behaviour of
// the optimizer depends on the distance function staying stable.
//
// Distance(a, b) == Distance(b, a) and Distance(a, a) == 0 for all valid
// points. Validating coordinates is the caller's responsibility.
func Distance(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
