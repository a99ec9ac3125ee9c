// Package handler implements the HTTP handlers for the FieldForce API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, plan.go, etc.) but all share the same Server struct so
// they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/middleware"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
	"github.com/tertiusintegrity/fieldforce-api/spec"
)

// AuthServicer defines the authentication operations the handler depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type AuthServicer interface {
	Login(ctx context.Context, email, password string) (domain.User, string, error)
}

// PlanServicer defines the tour plan operations the handler depends on.
type PlanServicer interface {
	Create(ctx context.Context, caller domain.Caller, forUserID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error)
	GetForMonth(ctx context.Context, caller domain.Caller, year, month int) (domain.MonthlyTourPlan, error)
	GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error)
	ListMine(ctx context.Context, caller domain.Caller) ([]domain.MonthlyTourPlan, error)
	UpdateEntry(ctx context.Context, caller domain.Caller, planID uuid.UUID, date string, upd service.EntryUpdate) (domain.MonthlyTourPlan, error)
	Submit(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
	Approve(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
	Reject(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
}

// RouteServicer defines the route suggestion operation the handler depends on.
type RouteServicer interface {
	Suggest(ctx context.Context, caller domain.Caller, req service.RouteRequest) (domain.RouteSuggestion, error)
}

// DirectoryServicer defines the read-only directory lookups the handler
// depends on.
type DirectoryServicer interface {
	Users(ctx context.Context) ([]domain.User, error)
	CustomersByTerritory(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error)
}

// AttendanceServicer defines the attendance operations the handler depends on.
type AttendanceServicer interface {
	Punch(ctx context.Context, caller domain.Caller, in service.PunchInput) (domain.AttendancePunch, error)
	List(ctx context.Context, caller domain.Caller, from, to time.Time) ([]domain.AttendancePunch, error)
}

// Server holds the service dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	auth       AuthServicer
	plans      PlanServicer
	routes     RouteServicer
	directory  DirectoryServicer
	attendance AttendanceServicer
	verifier   middleware.TokenVerifier
}

// NewServer constructs the Server with all its dependencies.
func NewServer(auth AuthServicer, plans PlanServicer, routes RouteServicer, directory DirectoryServicer, attendance AttendanceServicer, verifier middleware.TokenVerifier) *Server {
	return &Server{
		auth:       auth,
		plans:      plans,
		routes:     routes,
		directory:  directory,
		attendance: attendance,
		verifier:   verifier,
	}
}

// Router builds the chi router for the full API surface. Health, login and
// the API description are public; everything else requires a Bearer token.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Post("/auth/login", s.Login)
	r.Get("/openapi.yaml", spec.ServeYAML)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.verifier))

		r.Get("/users", s.ListUsers)
		r.Get("/territories/{territoryID}/customers", s.ListTerritoryCustomers)

		r.Route("/tour-plans", func(r chi.Router) {
			r.Post("/", s.CreatePlan)
			r.Get("/", s.ListPlans)
			r.Get("/month", s.GetPlanForMonth)
			r.Get("/{planID}", s.GetPlan)
			r.Put("/{planID}/entries/{date}", s.UpdatePlanEntry)
			r.Post("/{planID}/entries/{date}/route", s.SuggestRoute)
			r.Post("/{planID}/submit", s.SubmitPlan)
			r.Post("/{planID}/approve", s.ApprovePlan)
			r.Post("/{planID}/reject", s.RejectPlan)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/punch", s.PunchAttendance)
			r.Get("/", s.ListAttendance)
		})
	})

	return r
}
