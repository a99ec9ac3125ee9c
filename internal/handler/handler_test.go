package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/handler"
	"github.com/tertiusintegrity/fieldforce-api/internal/location"
	"github.com/tertiusintegrity/fieldforce-api/internal/service"
)

// Hand-written test doubles for the handler's servicer interfaces.
// Each method is a function field — set only the ones your test needs.

type mockAuthServicer struct {
	login func(ctx context.Context, email, password string) (domain.User, string, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.login(ctx, email, password)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

type mockPlanServicer struct {
	create      func(ctx context.Context, caller domain.Caller, forUserID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error)
	getForMonth func(ctx context.Context, caller domain.Caller, year, month int) (domain.MonthlyTourPlan, error)
	getByID     func(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error)
	listMine    func(ctx context.Context, caller domain.Caller) ([]domain.MonthlyTourPlan, error)
	updateEntry func(ctx context.Context, caller domain.Caller, planID uuid.UUID, date string, upd service.EntryUpdate) (domain.MonthlyTourPlan, error)
	submit      func(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
	approve     func(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
	reject      func(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error)
}

func (m *mockPlanServicer) Create(ctx context.Context, c domain.Caller, u uuid.UUID, y, mo int) (domain.MonthlyTourPlan, error) {
	return m.create(ctx, c, u, y, mo)
}
func (m *mockPlanServicer) GetForMonth(ctx context.Context, c domain.Caller, y, mo int) (domain.MonthlyTourPlan, error) {
	return m.getForMonth(ctx, c, y, mo)
}
func (m *mockPlanServicer) GetByID(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	return m.getByID(ctx, c, id)
}
func (m *mockPlanServicer) ListMine(ctx context.Context, c domain.Caller) ([]domain.MonthlyTourPlan, error) {
	return m.listMine(ctx, c)
}
func (m *mockPlanServicer) UpdateEntry(ctx context.Context, c domain.Caller, id uuid.UUID, date string, upd service.EntryUpdate) (domain.MonthlyTourPlan, error) {
	return m.updateEntry(ctx, c, id, date, upd)
}
func (m *mockPlanServicer) Submit(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	return m.submit(ctx, c, id)
}
func (m *mockPlanServicer) Approve(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	return m.approve(ctx, c, id)
}
func (m *mockPlanServicer) Reject(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	return m.reject(ctx, c, id)
}

var _ handler.PlanServicer = (*mockPlanServicer)(nil)

type mockRouteServicer struct {
	suggest func(ctx context.Context, caller domain.Caller, req service.RouteRequest) (domain.RouteSuggestion, error)
}

func (m *mockRouteServicer) Suggest(ctx context.Context, c domain.Caller, req service.RouteRequest) (domain.RouteSuggestion, error) {
	return m.suggest(ctx, c, req)
}

var _ handler.RouteServicer = (*mockRouteServicer)(nil)

type mockDirectoryServicer struct {
	users                func(ctx context.Context) ([]domain.User, error)
	customersByTerritory func(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error)
}

func (m *mockDirectoryServicer) Users(ctx context.Context) ([]domain.User, error) {
	return m.users(ctx)
}
func (m *mockDirectoryServicer) CustomersByTerritory(ctx context.Context, id uuid.UUID) ([]domain.Customer, error) {
	return m.customersByTerritory(ctx, id)
}

var _ handler.DirectoryServicer = (*mockDirectoryServicer)(nil)

type mockAttendanceServicer struct {
	punch func(ctx context.Context, caller domain.Caller, in service.PunchInput) (domain.AttendancePunch, error)
	list  func(ctx context.Context, caller domain.Caller, from, to time.Time) ([]domain.AttendancePunch, error)
}

func (m *mockAttendanceServicer) Punch(ctx context.Context, c domain.Caller, in service.PunchInput) (domain.AttendancePunch, error) {
	return m.punch(ctx, c, in)
}
func (m *mockAttendanceServicer) List(ctx context.Context, c domain.Caller, from, to time.Time) ([]domain.AttendancePunch, error) {
	return m.list(ctx, c, from, to)
}

var _ handler.AttendanceServicer = (*mockAttendanceServicer)(nil)

// staticVerifier accepts exactly one token.
type staticVerifier struct {
	caller domain.Caller
}

const testToken = "test-token"

func (v *staticVerifier) Verify(token string) (domain.Caller, error) {
	if token != testToken {
		return domain.Caller{}, errors.New("invalid token")
	}
	return v.caller, nil
}

// ---- helpers ---------------------------------------------------------------

// deps bundles the mocks wired into a test router.
type deps struct {
	auth       *mockAuthServicer
	plans      *mockPlanServicer
	routes     *mockRouteServicer
	directory  *mockDirectoryServicer
	attendance *mockAttendanceServicer
	caller     domain.Caller
}

func newDeps() *deps {
	return &deps{
		auth:       &mockAuthServicer{},
		plans:      &mockPlanServicer{},
		routes:     &mockRouteServicer{},
		directory:  &mockDirectoryServicer{},
		attendance: &mockAttendanceServicer{},
		caller:     domain.Caller{UID: uuid.New(), Role: domain.RoleMR},
	}
}

func (d *deps) router() http.Handler {
	srv := handler.NewServer(d.auth, d.plans, d.routes, d.directory, d.attendance, &staticVerifier{caller: d.caller})
	return srv.Router()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends an authenticated request through the router.
func (d *deps) do(t *testing.T, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)
	return rec
}

// errorCode extracts error.code from an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func planFixture(t *testing.T, userID uuid.UUID) domain.MonthlyTourPlan {
	t.Helper()
	plan, err := domain.NewMonthlyTourPlan(userID, 2025, 5)
	require.NoError(t, err)
	plan.ID = uuid.New()
	return plan
}

// ---- health & auth ---------------------------------------------------------

func TestGetHealth(t *testing.T) {
	d := newDeps()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin_Success(t *testing.T) {
	d := newDeps()
	user := domain.User{ID: uuid.New(), Email: "mr@example.com", Role: domain.RoleMR}
	d.auth.login = func(_ context.Context, email, password string) (domain.User, string, error) {
		assert.Equal(t, "mr@example.com", email)
		assert.Equal(t, "s3cret", password)
		return user, "tok-123", nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "mr@example.com", "password": "s3cret"}))
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "tok-123", resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	d := newDeps()
	d.auth.login = func(_ context.Context, _, _ string) (domain.User, string, error) {
		return domain.User{}, "", service.ErrInvalidCredentials
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "mr@example.com", "password": "wrong"}))
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))
}

func TestLogin_MissingFields(t *testing.T) {
	d := newDeps()

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		jsonBody(t, map[string]string{"email": "mr@example.com"}))
	rec := httptest.NewRecorder()
	d.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	d := newDeps()

	for _, path := range []string{"/users", "/tour-plans", "/attendance"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		d.router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

// ---- tour plans ------------------------------------------------------------

func TestCreatePlan(t *testing.T) {
	d := newDeps()
	plan := planFixture(t, d.caller.UID)
	d.plans.create = func(_ context.Context, c domain.Caller, forUser uuid.UUID, year, month int) (domain.MonthlyTourPlan, error) {
		assert.Equal(t, d.caller.UID, c.UID)
		assert.Equal(t, d.caller.UID, forUser, "empty user_id means self")
		assert.Equal(t, 2025, year)
		assert.Equal(t, 5, month)
		return plan, nil
	}

	rec := d.do(t, http.MethodPost, "/tour-plans", jsonBody(t, map[string]int{"year": 2025, "month": 5}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.MonthlyTourPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, plan.ID, got.ID)
	assert.Len(t, got.Entries, 30)
}

func TestCreatePlan_Duplicate(t *testing.T) {
	d := newDeps()
	d.plans.create = func(_ context.Context, _ domain.Caller, _ uuid.UUID, _, _ int) (domain.MonthlyTourPlan, error) {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.Create: %w", domain.ErrConflict)
	}

	rec := d.do(t, http.MethodPost, "/tour-plans", jsonBody(t, map[string]int{"year": 2025, "month": 5}))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))
}

func TestGetPlan_NotFound(t *testing.T) {
	d := newDeps()
	d.plans.getByID = func(_ context.Context, _ domain.Caller, _ uuid.UUID) (domain.MonthlyTourPlan, error) {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.GetByID: %w", domain.ErrNotFound)
	}

	rec := d.do(t, http.MethodGet, "/tour-plans/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestGetPlan_BadID(t *testing.T) {
	d := newDeps()

	rec := d.do(t, http.MethodGet, "/tour-plans/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetPlanForMonth(t *testing.T) {
	d := newDeps()
	plan := planFixture(t, d.caller.UID)
	d.plans.getForMonth = func(_ context.Context, _ domain.Caller, year, month int) (domain.MonthlyTourPlan, error) {
		assert.Equal(t, 2025, year)
		assert.Equal(t, 5, month)
		return plan, nil
	}

	rec := d.do(t, http.MethodGet, "/tour-plans/month?year=2025&month=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePlanEntry_Locked(t *testing.T) {
	d := newDeps()
	planID := uuid.New()
	d.plans.updateEntry = func(_ context.Context, _ domain.Caller, id uuid.UUID, date string, upd service.EntryUpdate) (domain.MonthlyTourPlan, error) {
		assert.Equal(t, planID, id)
		assert.Equal(t, "2025-06-02", date)
		assert.Equal(t, domain.ActivityLeave, upd.ActivityType)
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: status APPROVED: %w", domain.ErrPlanLocked)
	}

	rec := d.do(t, http.MethodPut, "/tour-plans/"+planID.String()+"/entries/2025-06-02",
		jsonBody(t, map[string]string{"activity_type": "LEAVE"}))

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "plan_locked", errorCode(t, rec))
}

func TestSubmitPlan(t *testing.T) {
	d := newDeps()
	plan := planFixture(t, d.caller.UID)
	plan.Status = domain.StatusSubmitted
	d.plans.submit = func(_ context.Context, c domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
		assert.Equal(t, plan.ID, id)
		return plan, nil
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+plan.ID.String()+"/submit", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.MonthlyTourPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.StatusSubmitted, got.Status)
}

func TestApprovePlan_InvalidTransition(t *testing.T) {
	d := newDeps()
	d.plans.approve = func(_ context.Context, _ domain.Caller, _ uuid.UUID) (domain.MonthlyTourPlan, error) {
		return domain.MonthlyTourPlan{}, fmt.Errorf("%w: DRAFT -> APPROVED", domain.ErrInvalidTransition)
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+uuid.NewString()+"/approve", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", errorCode(t, rec))
}

func TestRejectPlan_Forbidden(t *testing.T) {
	d := newDeps()
	d.plans.reject = func(_ context.Context, _ domain.Caller, _ uuid.UUID) (domain.MonthlyTourPlan, error) {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: %w", domain.ErrForbidden)
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+uuid.NewString()+"/reject", nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

// ---- routes ----------------------------------------------------------------

func TestSuggestRoute(t *testing.T) {
	d := newDeps()
	planID := uuid.New()
	territoryID := uuid.New()
	d.routes.suggest = func(_ context.Context, c domain.Caller, req service.RouteRequest) (domain.RouteSuggestion, error) {
		assert.Equal(t, planID, req.PlanID)
		assert.Equal(t, "2025-06-03", req.Date)
		assert.True(t, req.UseCurrentLocation)
		return domain.RouteSuggestion{
			Date:        req.Date,
			TerritoryID: territoryID,
			Start:       domain.GeoPoint{Lat: 12.97, Lng: 77.59},
			Customers:   []domain.Customer{{ID: uuid.New(), Name: "Dr. Rao"}},
		}, nil
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+planID.String()+"/entries/2025-06-03/route",
		jsonBody(t, map[string]bool{"use_current_location": true}))

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.RouteSuggestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Customers, 1)
	assert.Equal(t, "Dr. Rao", got.Customers[0].Name)
}

func TestSuggestRoute_EmptyBodyAllowed(t *testing.T) {
	d := newDeps()
	d.routes.suggest = func(_ context.Context, _ domain.Caller, req service.RouteRequest) (domain.RouteSuggestion, error) {
		assert.Nil(t, req.Start)
		assert.False(t, req.UseCurrentLocation)
		return domain.RouteSuggestion{Date: req.Date}, nil
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+uuid.NewString()+"/entries/2025-06-03/route", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSuggestRoute_LocationUnavailable(t *testing.T) {
	d := newDeps()
	d.routes.suggest = func(_ context.Context, _ domain.Caller, _ service.RouteRequest) (domain.RouteSuggestion, error) {
		return domain.RouteSuggestion{}, fmt.Errorf("service.RouteService.Suggest: %w", location.ErrUnavailable)
	}

	rec := d.do(t, http.MethodPost, "/tour-plans/"+uuid.NewString()+"/entries/2025-06-03/route", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "location_unavailable", errorCode(t, rec))
}

// ---- directory -------------------------------------------------------------

func TestListUsers(t *testing.T) {
	d := newDeps()
	d.directory.users = func(_ context.Context) ([]domain.User, error) {
		return []domain.User{{ID: uuid.New(), DisplayName: "Field MR", Role: domain.RoleMR}}, nil
	}

	rec := d.do(t, http.MethodGet, "/users", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []domain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Field MR", resp.Data[0].DisplayName)
}

func TestListTerritoryCustomers_UnknownTerritory(t *testing.T) {
	d := newDeps()
	d.directory.customersByTerritory = func(_ context.Context, _ uuid.UUID) ([]domain.Customer, error) {
		return nil, fmt.Errorf("service.DirectoryService.CustomersByTerritory: %w", domain.ErrNotFound)
	}

	rec := d.do(t, http.MethodGet, "/territories/"+uuid.NewString()+"/customers", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- attendance ------------------------------------------------------------

func TestPunchAttendance(t *testing.T) {
	d := newDeps()
	d.attendance.punch = func(_ context.Context, c domain.Caller, in service.PunchInput) (domain.AttendancePunch, error) {
		assert.Equal(t, domain.PunchIn, in.Kind)
		return domain.AttendancePunch{
			ID:       uuid.New(),
			UserID:   c.UID,
			Kind:     in.Kind,
			At:       time.Now().UTC(),
			Location: in.Location,
		}, nil
	}

	rec := d.do(t, http.MethodPost, "/attendance/punch", jsonBody(t, map[string]any{
		"kind":     "IN",
		"location": map[string]float64{"lat": 12.97, "lng": 77.59},
	}))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got domain.AttendancePunch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.PunchIn, got.Kind)
}

func TestListAttendance_BadWindow(t *testing.T) {
	d := newDeps()

	rec := d.do(t, http.MethodGet, "/attendance?from=yesterday&to=today", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
