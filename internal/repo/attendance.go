package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// AttendanceRepo defines the persistence operations for attendance punches.
type AttendanceRepo interface {
	// Create inserts a new punch and returns the persisted record.
	Create(ctx context.Context, punch domain.AttendancePunch) (domain.AttendancePunch, error)

	// LastByUser returns the user's most recent punch.
	// Returns domain.ErrNotFound when the user has never punched.
	LastByUser(ctx context.Context, userID uuid.UUID) (domain.AttendancePunch, error)

	// ListByUser returns the user's punches in [from, to), oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendancePunch, error)
}

// pgAttendanceRepo is the Postgres implementation of AttendanceRepo.
type pgAttendanceRepo struct {
	db db
}

// NewAttendanceRepo constructs an AttendanceRepo backed by the provided db connection.
func NewAttendanceRepo(db db) AttendanceRepo {
	return &pgAttendanceRepo{db: db}
}

func (r *pgAttendanceRepo) Create(ctx context.Context, punch domain.AttendancePunch) (domain.AttendancePunch, error) {
	const q = `
		INSERT INTO attendance_punches (user_id, kind, at, lat, lng, accuracy_meters, notes)
		VALUES (@user_id, @kind, @at, @lat, @lng, @accuracy_meters, @notes)
		RETURNING id, user_id, kind, at, lat, lng, accuracy_meters, notes`

	args := pgx.NamedArgs{
		"user_id":         punch.UserID,
		"kind":            string(punch.Kind),
		"at":              punch.At,
		"lat":             punch.Location.Lat,
		"lng":             punch.Location.Lng,
		"accuracy_meters": punch.AccuracyMeters,
		"notes":           punch.Notes,
	}

	result, err := scanPunch(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.AttendancePunch{}, fmt.Errorf("repo.AttendanceRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgAttendanceRepo) LastByUser(ctx context.Context, userID uuid.UUID) (domain.AttendancePunch, error) {
	const q = `
		SELECT id, user_id, kind, at, lat, lng, accuracy_meters, notes
		FROM attendance_punches
		WHERE user_id = @user_id
		ORDER BY at DESC, id DESC
		LIMIT 1`

	result, err := scanPunch(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.AttendancePunch{}, fmt.Errorf("repo.AttendanceRepo.LastByUser: %w", err)
	}
	return result, nil
}

func (r *pgAttendanceRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.AttendancePunch, error) {
	const q = `
		SELECT id, user_id, kind, at, lat, lng, accuracy_meters, notes
		FROM attendance_punches
		WHERE user_id = @user_id AND at >= @from AND at < @to
		ORDER BY at`

	args := pgx.NamedArgs{"user_id": userID, "from": from, "to": to}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var punches []domain.AttendancePunch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AttendanceRepo.ListByUser: scan: %w", err)
		}
		punches = append(punches, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AttendanceRepo.ListByUser: rows: %w", err)
	}

	return punches, nil
}

// scanPunch maps a single database row into a domain.AttendancePunch.
func scanPunch(s scanner) (domain.AttendancePunch, error) {
	var (
		p    domain.AttendancePunch
		id   pgtype.UUID
		uid  pgtype.UUID
		kind string
	)

	err := s.Scan(&id, &uid, &kind, &p.At, &p.Location.Lat, &p.Location.Lng, &p.AccuracyMeters, &p.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AttendancePunch{}, domain.ErrNotFound
		}
		return domain.AttendancePunch{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.UserID = uuid.UUID(uid.Bytes)
	p.Kind = domain.PunchKind(kind)

	return p, nil
}
