package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// PlanRepo defines the persistence operations for monthly tour plans.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// A plan row stores its entries as a single JSONB document: the plan is the
// unit of consistency, and every save replaces the whole document
// (last-write-wins — concurrent editors are a documented gap, not handled
// here).
type PlanRepo interface {
	// Create inserts a new plan and returns the persisted record (with
	// DB-generated id and timestamps populated).
	// Returns domain.ErrConflict when a plan already exists for the same
	// (user, year, month) — duplicates must fail, never silently overwrite.
	Create(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error)

	// GetByID retrieves a single plan by its UUID primary key.
	// Returns domain.ErrNotFound if no plan with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.MonthlyTourPlan, error)

	// GetForMonth retrieves the plan for a (user, year, 0-indexed month)
	// tuple. Returns domain.ErrNotFound when the user has no plan for that
	// month.
	GetForMonth(ctx context.Context, userID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error)

	// Update overwrites the plan's status and full entries document and
	// returns the updated record. Returns domain.ErrNotFound if no plan with
	// that ID exists.
	Update(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error)

	// ListByUser returns all plans owned by a user, newest planning period
	// first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTourPlan, error)
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

func (r *pgPlanRepo) Create(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error) {
	const q = `
		INSERT INTO tour_plans (user_id, year, month, status, entries)
		VALUES (@user_id, @year, @month, @status, @entries)
		RETURNING id, user_id, year, month, status, entries, created_at, updated_at`

	entries, err := json.Marshal(plan.Entries)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.Create: marshal entries: %w", err)
	}

	args := pgx.NamedArgs{
		"user_id": plan.UserID,
		"year":    plan.Year,
		"month":   plan.Month,
		"status":  string(plan.Status),
		"entries": entries,
	}

	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.Create: %w", domain.ErrConflict)
		}
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	const q = `
		SELECT id, user_id, year, month, status, entries, created_at, updated_at
		FROM tour_plans
		WHERE id = @id`

	result, err := scanPlan(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) GetForMonth(ctx context.Context, userID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error) {
	const q = `
		SELECT id, user_id, year, month, status, entries, created_at, updated_at
		FROM tour_plans
		WHERE user_id = @user_id AND year = @year AND month = @month`

	args := pgx.NamedArgs{"user_id": userID, "year": year, "month": month}
	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.GetForMonth: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) Update(ctx context.Context, plan domain.MonthlyTourPlan) (domain.MonthlyTourPlan, error) {
	const q = `
		UPDATE tour_plans
		SET status     = @status,
		    entries    = @entries,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, user_id, year, month, status, entries, created_at, updated_at`

	entries, err := json.Marshal(plan.Entries)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.Update: marshal entries: %w", err)
	}

	args := pgx.NamedArgs{
		"id":      plan.ID,
		"status":  string(plan.Status),
		"entries": entries,
	}

	result, err := scanPlan(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgPlanRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.MonthlyTourPlan, error) {
	const q = `
		SELECT id, user_id, year, month, status, entries, created_at, updated_at
		FROM tour_plans
		WHERE user_id = @user_id
		ORDER BY year DESC, month DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var plans []domain.MonthlyTourPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlanRepo.ListByUser: scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByUser: rows: %w", err)
	}

	return plans, nil
}

// scanPlan maps a single database row into a domain.MonthlyTourPlan,
// unmarshalling the JSONB entries document.
func scanPlan(s scanner) (domain.MonthlyTourPlan, error) {
	var (
		p       domain.MonthlyTourPlan
		id      pgtype.UUID
		userID  pgtype.UUID
		status  string
		entries []byte
	)

	err := s.Scan(&id, &userID, &p.Year, &p.Month, &status, &entries, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MonthlyTourPlan{}, domain.ErrNotFound
		}
		return domain.MonthlyTourPlan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.UserID = uuid.UUID(userID.Bytes)
	p.Status = domain.PlanStatus(status)
	if err := json.Unmarshal(entries, &p.Entries); err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("unmarshal entries: %w", err)
	}

	return p, nil
}
