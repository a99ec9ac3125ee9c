package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

type punchRequest struct {
	Kind           string          `json:"kind"`
	Location       domain.GeoPoint `json:"location"`
	AccuracyMeters float64         `json:"accuracy_meters"`
	Notes          string          `json:"notes,omitempty"`
}

// PunchAttendance handles POST /attendance/punch.
func (s *Server) PunchAttendance(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be valid JSON")
		return
	}

	punch, err := s.attendance.Punch(r.Context(), c, service.PunchInput{
		Kind:           domain.PunchKind(req.Kind),
		Location:       req.Location,
		AccuracyMeters: req.AccuracyMeters,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, punch)
}

// ListAttendance handles GET /attendance?from=&to=. Both bounds are
// RFC 3339 timestamps; from is inclusive, to exclusive.
func (s *Server) ListAttendance(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		requestError(w, "from must be an RFC 3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		requestError(w, "to must be an RFC 3339 timestamp")
		return
	}

	punches, err := s.attendance.List(r.Context(), c, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": punches})
}
