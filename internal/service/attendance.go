package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// AttendanceService implements business logic for attendance punches.
type AttendanceService struct {
	punches repo.AttendanceRepo

	// now is swappable for tests.
	now func() time.Time
}

// NewAttendanceService constructs an AttendanceService backed by the provided repo.
func NewAttendanceService(punches repo.AttendanceRepo) *AttendanceService {
	return &AttendanceService{punches: punches, now: time.Now}
}

// PunchInput carries the fields of one punch request. The location fix comes
// from the device that ran the acquisition cascade; the server only range-
// checks it.
type PunchInput struct {
	Kind           domain.PunchKind
	Location       domain.GeoPoint
	AccuracyMeters float64
	Notes          string
}

// Punch records an IN or OUT event for the caller at the current time.
// Punches must alternate: two INs (or two OUTs) in a row are rejected, and
// the very first punch of a user must be an IN.
func (s *AttendanceService) Punch(ctx context.Context, caller domain.Caller, in PunchInput) (domain.AttendancePunch, error) {
	if _, ok := domain.ParsePunchKind(string(in.Kind)); !ok {
		return domain.AttendancePunch{}, fmt.Errorf("%w: unknown punch kind %q", domain.ErrValidation, in.Kind)
	}
	if !in.Location.Valid() {
		return domain.AttendancePunch{}, fmt.Errorf("%w: location out of coordinate range", domain.ErrValidation)
	}
	if in.AccuracyMeters < 0 {
		return domain.AttendancePunch{}, fmt.Errorf("%w: accuracy must be non-negative", domain.ErrValidation)
	}

	last, err := s.punches.LastByUser(ctx, caller.UID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if in.Kind == domain.PunchOut {
			return domain.AttendancePunch{}, fmt.Errorf("%w: cannot punch out before punching in", domain.ErrValidation)
		}
	case err != nil:
		return domain.AttendancePunch{}, fmt.Errorf("service.AttendanceService.Punch: %w", err)
	case last.Kind == in.Kind:
		return domain.AttendancePunch{}, fmt.Errorf("%w: already punched %s", domain.ErrValidation, in.Kind)
	}

	created, err := s.punches.Create(ctx, domain.AttendancePunch{
		UserID:         caller.UID,
		Kind:           in.Kind,
		At:             s.now().UTC(),
		Location:       in.Location,
		AccuracyMeters: in.AccuracyMeters,
		Notes:          in.Notes,
	})
	if err != nil {
		return domain.AttendancePunch{}, fmt.Errorf("service.AttendanceService.Punch: %w", err)
	}
	return created, nil
}

// List returns the caller's punches in [from, to), oldest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *AttendanceService) List(ctx context.Context, caller domain.Caller, from, to time.Time) ([]domain.AttendancePunch, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", domain.ErrValidation)
	}

	punches, err := s.punches.ListByUser(ctx, caller.UID, from, to)
	if err != nil {
		return nil, fmt.Errorf("service.AttendanceService.List: %w", err)
	}
	if punches == nil {
		return []domain.AttendancePunch{}, nil
	}
	return punches, nil
}
