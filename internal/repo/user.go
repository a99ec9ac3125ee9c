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

// UserRepo defines read access to the user/territory directory.
// User provisioning happens out of band (migrations or admin tooling), so
// only the reads the planner and login flow need are exposed.
type UserRepo interface {
	// GetByID retrieves a user with their assigned territories.
	// Returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail retrieves a user by email address, including the password
	// hash, for the login flow. Returns domain.ErrNotFound if unknown.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// List returns all users with their assigned territories, ordered by
	// display name. Used to populate joint-work and approver pickers.
	List(ctx context.Context) ([]domain.User, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, display_name, role, password_hash, hq_lat, hq_lng, created_at`

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}

	if err := r.attachTerritories(ctx, map[uuid.UUID]*domain.User{u.ID: &u}); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = @email`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}

	if err := r.attachTerritories(ctx, map[uuid.UUID]*domain.User{u.ID: &u}); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY display_name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	byID := make(map[uuid.UUID]*domain.User)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.UserRepo.List: scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: rows: %w", err)
	}

	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	if err := r.attachTerritories(ctx, byID); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}

	return users, nil
}

// attachTerritories loads the assigned territories for every user in byID and
// appends them in place. One query regardless of how many users are loaded.
func (r *pgUserRepo) attachTerritories(ctx context.Context, byID map[uuid.UUID]*domain.User) error {
	if len(byID) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	const q = `
		SELECT ut.user_id, t.id, t.name
		FROM user_territories ut
		JOIN territories t ON t.id = ut.territory_id
		WHERE ut.user_id = ANY(@user_ids)
		ORDER BY t.name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_ids": ids})
	if err != nil {
		return fmt.Errorf("attach territories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, terrID pgtype.UUID
		var name string
		if err := rows.Scan(&userID, &terrID, &name); err != nil {
			return fmt.Errorf("attach territories: scan: %w", err)
		}
		if u, ok := byID[uuid.UUID(userID.Bytes)]; ok {
			u.Territories = append(u.Territories, domain.Territory{
				ID:   uuid.UUID(terrID.Bytes),
				Name: name,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("attach territories: rows: %w", err)
	}

	return nil
}

// scanUser maps a single database row into a domain.User.
// hq_lat/hq_lng are nullable as a pair, like customer coordinates.
func scanUser(s scanner) (domain.User, error) {
	var (
		u        domain.User
		id       pgtype.UUID
		role     string
		lat, lng pgtype.Float8
	)

	err := s.Scan(&id, &u.Email, &u.DisplayName, &role, &u.PasswordHash, &lat, &lng, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	u.ID = uuid.UUID(id.Bytes)
	u.Role = domain.Role(role)
	if lat.Valid && lng.Valid {
		u.HQ = &domain.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}

	return u, nil
}
