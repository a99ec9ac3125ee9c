package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field — set only the ones your test needs. This is idiomatic Go:
// no mock generation library required for simple cases.

type mockPlanRepo struct {
	create      func(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.MonthlyTourPlan, error)
	getForMonth func(ctx context.Context, userID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error)
	update      func(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error)
	listByUser  func(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTourPlan, error)
}

func (m *mockPlanRepo) Create(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error) {
	return m.create(ctx, plan)
}
func (m *mockPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	return m.getByID(ctx, id)
}
func (m *mockPlanRepo) GetForMonth(ctx context.Context, userID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error) {
	return m.getForMonth(ctx, userID, year, month)
}
func (m *mockPlanRepo) Update(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error) {
	return m.update(ctx, plan)
}
func (m *mockPlanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTourPlan, error) {
	return m.listByUser(ctx, userID)
}

// compile-time check: mockPlanRepo must satisfy repo.PlanRepo.
var _ repo.PlanRepo = (*mockPlanRepo)(nil)

type mockUserRepo struct {
	getByID    func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByEmail func(ctx context.Context, email string) (domain.User, error)
	list       func(ctx context.Context) ([]domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockCustomerRepo struct {
	listByTerritory func(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error)
	getTerritory    func(ctx context.Context, id uuid.UUID) (domain.Territory, error)
}

func (m *mockCustomerRepo) ListByTerritory(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error) {
	return m.listByTerritory(ctx, territoryID)
}
func (m *mockCustomerRepo) GetTerritory(ctx context.Context, id uuid.UUID) (domain.Territory, error) {
	return m.getTerritory(ctx, id)
}

var _ repo.CustomerRepo = (*mockCustomerRepo)(nil)

type mockAttendanceRepo struct {
	create     func(ctx context.Context, punch domain.AttendancePunch) (domain.AttendancePunch, error)
	lastByUser func(ctx context.Context, userID uuid.UUID) (domain.AttendancePunch, error)
	listByUser func(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendancePunch, error)
}

func (m *mockAttendanceRepo) Create(ctx context.Context, punch domain.AttendancePunch) (domain.AttendancePunch, error) {
	return m.create(ctx, punch)
}
func (m *mockAttendanceRepo) LastByUser(ctx context.Context, userID uuid.UUID) (domain.AttendancePunch, error) {
	return m.lastByUser(ctx, userID)
}
func (m *mockAttendanceRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendancePunch, error) {
	return m.listByUser(ctx, userID, from, to)
}

var _ repo.AttendanceRepo = (*mockAttendanceRepo)(nil)

// ---- shared fixtures -------------------------------------------------------

// fixedUserRepo returns a user repo that resolves the given users by ID and
// email and lists them all.
func fixedUserRepo(users ...domain.User) *mockUserRepo {
	return &mockUserRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.User, error) {
			for _, u := range users {
				if u.ID == id {
					return u, nil
				}
			}
			return domain.User{}, domain.ErrNotFound
		},
		getByEmail: func(_ context.Context, email string) (domain.User, error) {
			for _, u := range users {
				if u.Email == email {
					return u, nil
				}
			}
			return domain.User{}, domain.ErrNotFound
		},
		list: func(_ context.Context) ([]domain.User, error) {
			return users, nil
		},
	}
}

// planStore is a mockPlanRepo backed by a single in-memory plan, echoing
// updates back. Handy for tests that walk a plan through its lifecycle.
type planStore struct {
	mockPlanRepo
	plan domain.MonthlyTourPlan
}

func newPlanStore(plan domain.MonthlyTourPlan) *planStore {
	s := &planStore{plan: plan}
	s.getByID = func(_ context.Context, id uuid.UUID) (domain.MonthlyTourPlan, error) {
		if id != s.plan.ID {
			return domain.MonthlyTourPlan{}, domain.ErrNotFound
		}
		return s.plan, nil
	}
	s.update = func(_ context.Context, p domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error) {
		if p.ID != s.plan.ID {
			return domain.MonthlyTourPlan{}, domain.ErrNotFound
		}
		s.plan = p
		return s.plan, nil
	}
	return s
}
