// Package location resolves a field user's current device position through a
// two-stage acquisition cascade: a high-accuracy fix is attempted first and,
// on timeout or failure, a coarser network-level fix is accepted instead.
// Only when both stages fail does the caller see a location error.
//
// This is the single place in the system where a degraded retry happens —
// no other operation retries automatically.
package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// ErrPermissionDenied means the device reported that location permission was
// refused. It is kept distinct from ErrUnavailable because the user-facing
// remedy is different: enable the permission in settings, not "try again".
var ErrPermissionDenied = errors.New("location permission denied")

// ErrUnavailable means both acquisition stages failed for reasons other than
// permission (timeouts, no fix, provider errors).
var ErrUnavailable = errors.New("could not fetch location")

// Options controls one position acquisition attempt.
// MaximumAge allows a cached fix no older than the given duration; zero
// forces a fresh reading.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// Provider returns a user's current position from whatever source the
// deployment wires in (a device gateway in production, a scripted fake in
// tests). Implementations report permission refusal as ErrPermissionDenied
// so the cascade can stop early instead of burning the second attempt.
type Provider interface {
	CurrentPosition(ctx context.Context, userID uuid.UUID, opts Options) (domain.GeoPoint, error)
}

// Acquisition stage parameters, mirroring the field app's behaviour:
// give satellites ten seconds to lock on, then fall back to a network fix
// and accept a reading up to thirty seconds old.
var (
	highAccuracyOpts = Options{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: 0}
	lowAccuracyOpts  = Options{HighAccuracy: false, Timeout: 10 * time.Second, MaximumAge: 30 * time.Second}
)

// Cascade runs the two-stage acquisition against a Provider.
type Cascade struct {
	provider Provider
}

// NewCascade constructs a Cascade over the given provider.
func NewCascade(provider Provider) *Cascade {
	return &Cascade{provider: provider}
}

// Acquire resolves the user's position: precise first, coarse second.
// A permission refusal at either stage aborts immediately with
// ErrPermissionDenied. Any other double failure collapses into a single
// ErrUnavailable — the caller gets one "could not fetch location" error, not
// a stage-by-stage report.
func (c *Cascade) Acquire(ctx context.Context, userID uuid.UUID) (domain.GeoPoint, error) {
	point, err := c.attempt(ctx, userID, highAccuracyOpts)
	if err == nil {
		return point, nil
	}
	if errors.Is(err, ErrPermissionDenied) {
		return domain.GeoPoint{}, err
	}

	point, err = c.attempt(ctx, userID, lowAccuracyOpts)
	if err == nil {
		return point, nil
	}
	if errors.Is(err, ErrPermissionDenied) {
		return domain.GeoPoint{}, err
	}

	return domain.GeoPoint{}, fmt.Errorf("location.Cascade.Acquire: %w", ErrUnavailable)
}

// attempt runs a single bounded acquisition and range-checks the result.
func (c *Cascade) attempt(ctx context.Context, userID uuid.UUID, opts Options) (domain.GeoPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	point, err := c.provider.CurrentPosition(ctx, userID, opts)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	if !point.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("provider returned out-of-range coordinates (%f, %f)", point.Lat, point.Lng)
	}
	return point, nil
}
