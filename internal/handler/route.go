package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

type suggestRouteRequest struct {
	Start              *domain.GeoPoint `json:"start,omitempty"`
	UseCurrentLocation bool             `json:"use_current_location,omitempty"`
}

// SuggestRoute handles POST /tour-plans/{planID}/entries/{date}/route.
// An empty body is allowed; it means "start from the plan owner's HQ".
func (s *Server) SuggestRoute(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := planIDParam(w, r)
	if !ok {
		return
	}

	var req suggestRouteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			requestError(w, "request body must be valid JSON")
			return
		}
	}

	suggestion, err := s.routes.Suggest(r.Context(), c, service.RouteRequest{
		PlanID:             id,
		Date:               chi.URLParam(r, "date"),
		Start:              req.Start,
		UseCurrentLocation: req.UseCurrentLocation,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}
