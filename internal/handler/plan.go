package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/middleware"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

// caller pulls the authenticated caller out of the request context. The
// Authenticate middleware guarantees it is present on protected routes; a
// missing caller means the route was wired outside the auth group.
func caller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	c, ok := middleware.CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{errorDetail{"unauthorized", "missing authentication"}})
	}
	return c, ok
}

// planIDParam parses the {planID} path parameter.
func planIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		requestError(w, "planID must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

type createPlanRequest struct {
	// UserID is optional; managers may create a plan on a subordinate's
	// behalf. Empty means "for myself".
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Year   int        `json:"year"`
	Month  int        `json:"month"`
}

// CreatePlan handles POST /tour-plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be valid JSON")
		return
	}

	forUser := c.UID
	if req.UserID != nil {
		forUser = *req.UserID
	}

	plan, err := s.plans.Create(r.Context(), c, forUser, req.Year, req.Month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, plan)
}

// ListPlans handles GET /tour-plans. It lists the caller's own plans.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	plans, err := s.plans.ListMine(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": plans})
}

// GetPlanForMonth handles GET /tour-plans/month?year=&month=.
func (s *Server) GetPlanForMonth(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		requestError(w, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		requestError(w, "month must be an integer")
		return
	}

	plan, err := s.plans.GetForMonth(r.Context(), c, year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// GetPlan handles GET /tour-plans/{planID}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := planIDParam(w, r)
	if !ok {
		return
	}

	plan, err := s.plans.GetByID(r.Context(), c, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

type updateEntryRequest struct {
	ActivityType     string     `json:"activity_type"`
	TerritoryID      *uuid.UUID `json:"territory_id,omitempty"`
	JointWorkWithUID *uuid.UUID `json:"joint_work_with_uid,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// UpdatePlanEntry handles PUT /tour-plans/{planID}/entries/{date}.
func (s *Server) UpdatePlanEntry(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := planIDParam(w, r)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be valid JSON")
		return
	}

	upd := service.EntryUpdate{
		ActivityType:     domain.ActivityType(req.ActivityType),
		TerritoryID:      req.TerritoryID,
		JointWorkWithUID: req.JointWorkWithUID,
		Notes:            req.Notes,
	}
	plan, err := s.plans.UpdateEntry(r.Context(), c, id, chi.URLParam(r, "date"), upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// SubmitPlan handles POST /tour-plans/{planID}/submit.
func (s *Server) SubmitPlan(w http.ResponseWriter, r *http.Request) {
	s.transitionPlan(w, r, s.plans.Submit)
}

// ApprovePlan handles POST /tour-plans/{planID}/approve.
func (s *Server) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	s.transitionPlan(w, r, s.plans.Approve)
}

// RejectPlan handles POST /tour-plans/{planID}/reject.
func (s *Server) RejectPlan(w http.ResponseWriter, r *http.Request) {
	s.transitionPlan(w, r, s.plans.Reject)
}

func (s *Server) transitionPlan(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := planIDParam(w, r)
	if !ok {
		return
	}

	plan, err := op(r.Context(), c, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
