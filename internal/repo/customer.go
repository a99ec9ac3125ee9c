package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// CustomerRepo defines read access to the customer directory.
// The planner only ever reads customers — it reorders a snapshot of them and
// never mutates the records, so no write operations are exposed.
type CustomerRepo interface {
	// ListByTerritory returns all customers assigned to a territory, with or
	// without coordinates, ordered by name for stable routing input.
	ListByTerritory(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error)

	// GetTerritory retrieves a territory by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetTerritory(ctx context.Context, id uuid.UUID) (domain.Territory, error)
}

// pgCustomerRepo is the Postgres implementation of CustomerRepo.
type pgCustomerRepo struct {
	db db
}

// NewCustomerRepo constructs a CustomerRepo backed by the provided db connection.
func NewCustomerRepo(db db) CustomerRepo {
	return &pgCustomerRepo{db: db}
}

// ListByTerritory returns the territory's customers ordered by name.
// The stable ordering matters: the route optimizer's tie-break is "lowest
// input index", so the directory must hand it a deterministic sequence.
func (r *pgCustomerRepo) ListByTerritory(ctx context.Context, territoryID uuid.UUID) ([]domain.Customer, error) {
	const q = `
		SELECT id, territory_id, name, type, category, specialty, lat, lng, created_at
		FROM customers
		WHERE territory_id = @territory_id
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"territory_id": territoryID})
	if err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.ListByTerritory: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CustomerRepo.ListByTerritory: scan: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CustomerRepo.ListByTerritory: rows: %w", err)
	}

	return customers, nil
}

func (r *pgCustomerRepo) GetTerritory(ctx context.Context, id uuid.UUID) (domain.Territory, error) {
	const q = `SELECT id, name FROM territories WHERE id = @id`

	var (
		t   domain.Territory
		tid pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&tid, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Territory{}, fmt.Errorf("repo.CustomerRepo.GetTerritory: %w", domain.ErrNotFound)
		}
		return domain.Territory{}, fmt.Errorf("repo.CustomerRepo.GetTerritory: %w", err)
	}
	t.ID = uuid.UUID(tid.Bytes)
	return t, nil
}

// scanCustomer maps a single database row into a domain.Customer.
// lat/lng are nullable as a pair: a customer has either both coordinates or
// no location at all — never a half-filled point.
func scanCustomer(s scanner) (domain.Customer, error) {
	var (
		c        domain.Customer
		id       pgtype.UUID
		tid      pgtype.UUID
		lat, lng pgtype.Float8
	)

	err := s.Scan(&id, &tid, &c.Name, &c.Type, &c.Category, &c.Specialty, &lat, &lng, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, domain.ErrNotFound
		}
		return domain.Customer{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.TerritoryID = uuid.UUID(tid.Bytes)
	if lat.Valid && lng.Valid {
		c.Location = &domain.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}

	return c, nil
}
