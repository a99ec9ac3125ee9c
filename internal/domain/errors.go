package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, joint work with oneself).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when an authenticated caller lacks the authority
// for an operation (non-owner submitting, non-approver approving). It is
// deliberately a separate sentinel from ErrValidation so authorization
// failures are never reported as field problems or silently downgraded to
// no-ops. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation would violate a uniqueness
// constraint — in particular, creating a second tour plan for the same
// (user, year, month). Handlers should map this to HTTP 409.
var ErrConflict = errors.New("already exists")

// ErrInvalidTransition is returned when a tour plan status change is not
// permitted from the plan's current status (e.g. approving a plan still in
// DRAFT). Handlers should map this to HTTP 409.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPlanLocked is returned when an entry edit is attempted while the plan's
// status forbids mutation (SUBMITTED or APPROVED). Handlers should map this
// to HTTP 409.
var ErrPlanLocked = errors.New("plan is not editable")
