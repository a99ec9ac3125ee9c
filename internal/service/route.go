package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// defaultOrigin is the route start used when a request carries no explicit
// start point and the user has no HQ on record.
var defaultOrigin = domain.GeoPoint{Lat: 28.6139, Lng: 77.2090}

// OptimizeRoute orders customers by greedy nearest-neighbor tour construction
// starting from start.
//
// The result is a permutation of exactly the routable subset of the input:
// customers without a usable location are dropped, not pushed to the end,
// because there is no distance to sort them by. At each step the strictly
// closest unvisited customer is chosen; on an exact distance tie the one
// earlier in the input order wins, so the function is deterministic and
// reproducible for the same input order.
//
// This is a heuristic, not an exact TSP solve — it minimizes each hop, not
// the whole tour. O(n²), fine for territory-sized inputs (tens of customers).
// Pure function: no side effects, empty input yields an empty route.
func OptimizeRoute(customers []domain.Customer, start domain.GeoPoint) []domain.Customer {
	unvisited := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if c.Routable() {
			unvisited = append(unvisited, c)
		}
	}

	route := make([]domain.Customer, 0, len(unvisited))
	current := start

	for len(unvisited) > 0 {
		best := 0
		bestDist := math.Inf(1)
		// Strict < keeps the earliest remaining (lowest original index)
		// candidate on ties.
		for i, c := range unvisited {
			if d := domain.Distance(current, *c.Location); d < bestDist {
				best = i
				bestDist = d
			}
		}

		next := unvisited[best]
		route = append(route, next)
		current = *next.Location
		unvisited = slices.Delete(unvisited, best, best+1)
	}

	return route
}

// RouteCache caches optimized visit orders keyed by an input fingerprint, so
// repeated suggestions for unchanged inputs skip recomputation.
// Implementations must treat a miss as (nil, false, nil), not an error.
type RouteCache interface {
	Get(ctx context.Context, key string) ([]uuid.UUID, bool, error)
	Set(ctx context.Context, key string, ids []uuid.UUID) error
}

// Locator resolves a user's current device position. The concrete
// implementation runs the high-accuracy → low-accuracy acquisition cascade.
type Locator interface {
	Acquire(ctx context.Context, userID uuid.UUID) (domain.GeoPoint, error)
}

// RouteRequest carries the parameters of one route suggestion.
// Start overrides everything when set; UseCurrentLocation asks the locator
// for the caller's device position; otherwise the plan owner's HQ (or the
// default origin) is used.
type RouteRequest struct {
	PlanID             uuid.UUID
	Date               string
	Start              *domain.GeoPoint
	UseCurrentLocation bool
}

// RouteService produces route suggestions for tour plan entries and caches
// their output on the entry itself and in the route cache.
type RouteService struct {
	plans     repo.PlanRepo
	customers repo.CustomerRepo
	users     repo.UserRepo
	cache     RouteCache // nil disables caching
	locator   Locator    // nil disables current-location starts
}

// NewRouteService constructs a RouteService. cache and locator are optional;
// pass nil to run without Redis or without a location gateway.
func NewRouteService(plans repo.PlanRepo, customers repo.CustomerRepo, users repo.UserRepo, cache RouteCache, locator Locator) *RouteService {
	return &RouteService{plans: plans, customers: customers, users: users, cache: cache, locator: locator}
}

// Suggest computes the optimized visit order for one FIELD_WORK day of a
// tour plan. The caller must be the plan owner or hold approval authority.
//
// The ordered customer IDs are written back onto the entry when the plan is
// still editable, so the plan document carries its cached route; locked plans
// still get a suggestion, it just isn't persisted.
func (s *RouteService) Suggest(ctx context.Context, caller domain.Caller, req RouteRequest) (domain.RouteSuggestion, error) {
	plan, err := s.plans.GetByID(ctx, req.PlanID)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", err)
	}
	if plan.UserID != caller.UID && !caller.Role.CanApprove() {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", domain.ErrForbidden)
	}

	idx := plan.EntryIndex(req.Date)
	if idx < 0 {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: no entry for %s: %w", req.Date, domain.ErrNotFound)
	}
	entry := plan.Entries[idx]
	if entry.ActivityType != domain.ActivityFieldWork || entry.TerritoryID == nil {
		return domain.RouteSuggestion{}, fmt.Errorf("%w: entry %s has no territory to route", domain.ErrValidation, req.Date)
	}

	start, err := s.resolveStart(ctx, plan.UserID, req)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", err)
	}

	customers, err := s.customers.ListByTerritory(ctx, *entry.TerritoryID)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", err)
	}

	suggestion := domain.RouteSuggestion{
		Date:        req.Date,
		TerritoryID: *entry.TerritoryID,
		Start:       start,
	}

	key := routeFingerprint(*entry.TerritoryID, start, customers)
	if ids, ok := s.cachedOrder(ctx, key, customers); ok {
		suggestion.Customers = ids
		suggestion.FromCache = true
	} else {
		suggestion.Customers = OptimizeRoute(customers, start)
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, customerIDs(suggestion.Customers)); err != nil {
				// Cache failures must never fail the suggestion.
				suggestion.FromCache = false
			}
		}
	}

	if err := s.persistRoute(ctx, plan, idx, suggestion.Customers); err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", err)
	}

	return suggestion, nil
}

// resolveStart picks the route origin: explicit override, then the caller's
// live position, then the plan owner's HQ, then the default origin.
func (s *RouteService) resolveStart(ctx context.Context, ownerID uuid.UUID, req RouteRequest) (domain.GeoPoint, error) {
	if req.Start != nil {
		if !req.Start.Valid() {
			return domain.GeoPoint{}, fmt.Errorf("%w: start point out of coordinate range", domain.ErrValidation)
		}
		return *req.Start, nil
	}

	if req.UseCurrentLocation {
		if s.locator == nil {
			return domain.GeoPoint{}, fmt.Errorf("%w: current location is not available on this deployment", domain.ErrValidation)
		}
		return s.locator.Acquire(ctx, ownerID)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if owner.HQ != nil && owner.HQ.Valid() {
		return *owner.HQ, nil
	}
	return defaultOrigin, nil
}

// cachedOrder resolves a cache hit back into customer records. A hit is only
// honored when every cached ID still exists in the directory snapshot —
// otherwise the inputs changed and the cached order is stale.
func (s *RouteService) cachedOrder(ctx context.Context, key string, customers []domain.Customer) ([]domain.Customer, bool) {
	if s.cache == nil {
		return nil, false
	}
	ids, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	byID := make(map[uuid.UUID]domain.Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}

	ordered := make([]domain.Customer, 0, len(ids))
	for _, id := range ids {
		c, exists := byID[id]
		if !exists {
			return nil, false
		}
		ordered = append(ordered, c)
	}
	return ordered, true
}

// persistRoute writes the ordered customer IDs onto the plan entry. Locked
// plans are left untouched; unchanged orders are not re-saved.
func (s *RouteService) persistRoute(ctx context.Context, plan domain.MonthlyTourPlan, idx int, route []domain.Customer) error {
	if !plan.Editable() {
		return nil
	}

	ids := customerIDs(route)
	if slices.Equal(plan.Entries[idx].RouteCustomerIDs, ids) {
		return nil
	}

	plan.Entries[idx].RouteCustomerIDs = ids
	if _, err := s.plans.Update(ctx, plan); err != nil {
		// A concurrently deleted plan shouldn't fail the suggestion itself.
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func customerIDs(customers []domain.Customer) []uuid.UUID {
	ids := make([]uuid.UUID, len(customers))
	for i, c := range customers {
		ids[i] = c.ID
	}
	return ids
}

// routeFingerprint hashes everything the optimizer's output depends on:
// territory, start point, and the identity + position of every customer in
// the snapshot. Any input change produces a new key, which is what makes the
// cached route "idempotent until inputs change".
func routeFingerprint(territoryID uuid.UUID, start domain.GeoPoint, customers []domain.Customer) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%.6f,%.6f", territoryID, start.Lat, start.Lng)
	for _, c := range customers {
		if c.Routable() {
			fmt.Fprintf(h, "|%s:%.6f,%.6f", c.ID, c.Location.Lat, c.Location.Lng)
		}
	}
	return "route:" + hex.EncodeToString(h.Sum(nil))
}
