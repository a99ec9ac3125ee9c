package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListUsers handles GET /users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.directory.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": users})
}

// ListTerritoryCustomers handles GET /territories/{territoryID}/customers.
func (s *Server) ListTerritoryCustomers(w http.ResponseWriter, r *http.Request) {
	territoryID, err := uuid.Parse(chi.URLParam(r, "territoryID"))
	if err != nil {
		requestError(w, "territoryID must be a valid UUID")
		return
	}

	customers, err := s.directory.CustomersByTerritory(r.Context(), territoryID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": customers})
}
