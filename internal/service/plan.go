// Package service contains the business logic for the tour planning API.
// Services validate inputs, enforce authorization and the plan state machine,
// and orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// PlanService implements business logic for monthly tour plans: creation,
// entry edits, and the DRAFT → SUBMITTED → APPROVED/REJECTED lifecycle.
type PlanService struct {
	plans repo.PlanRepo
	users repo.UserRepo
}

// NewPlanService constructs a PlanService backed by the provided repos.
func NewPlanService(plans repo.PlanRepo, users repo.UserRepo) *PlanService {
	return &PlanService{plans: plans, users: users}
}

// Create builds and persists a fresh DRAFT plan for the given user and
// 0-indexed month, one entry per calendar day with the Sunday default
// applied. Creating on behalf of another user requires approval authority.
// Returns domain.ErrConflict when a plan for (user, year, month) already
// exists — a duplicate never silently overwrites.
func (s *PlanService) Create(ctx context.Context, caller domain.Caller, forUserID uuid.UUID, year, month int) (domain.MonthlyTourPlan, error) {
	ownerID := caller.UID
	if forUserID != uuid.Nil && forUserID != caller.UID {
		if !caller.Role.CanApprove() {
			return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.Create: on-behalf creation: %w", domain.ErrForbidden)
		}
		ownerID = forUserID
	}

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.Create: owner lookup: %w", err)
	}

	plan, err := domain.NewMonthlyTourPlan(ownerID, year, month)
	if err != nil {
		return domain.MonthlyTourPlan{}, err
	}

	created, err := s.plans.Create(ctx, plan)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return created, nil
}

// GetForMonth returns the caller's own plan for a (year, 0-indexed month).
func (s *PlanService) GetForMonth(ctx context.Context, caller domain.Caller, year, month int) (domain.MonthlyTourPlan, error) {
	plan, err := s.plans.GetForMonth(ctx, caller.UID, year, month)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.GetForMonth: %w", err)
	}
	return plan, nil
}

// GetByID returns a plan visible to the caller: their own, or any plan when
// the caller holds approval authority.
func (s *PlanService) GetByID(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.MonthlyTourPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.GetByID: %w", err)
	}
	if plan.UserID != caller.UID && !caller.Role.CanApprove() {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.GetByID: %w", domain.ErrForbidden)
	}
	return plan, nil
}

// ListMine returns all of the caller's plans, newest planning period first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlanService) ListMine(ctx context.Context, caller domain.Caller) ([]domain.MonthlyTourPlan, error) {
	plans, err := s.plans.ListByUser(ctx, caller.UID)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListMine: %w", err)
	}
	if plans == nil {
		return []domain.MonthlyTourPlan{}, nil
	}
	return plans, nil
}

// EntryUpdate carries the editable fields of one tour plan entry.
// TerritoryID and JointWorkWithUID are cleared when nil.
type EntryUpdate struct {
	ActivityType     domain.ActivityType
	TerritoryID      *uuid.UUID
	JointWorkWithUID *uuid.UUID
	Notes            string
}

// UpdateEntry edits a single day of an editable plan and saves the full plan
// document.
//
// Rules enforced here, in order:
//   - only the owner or an approver may edit;
//   - the plan must be in DRAFT or REJECTED (ErrPlanLocked otherwise — an
//     APPROVED plan rejects edits with an explicit error, never a no-op);
//   - the activity type must be a known value;
//   - a territory, when set, must be one of the owner's assigned territories
//     (clearing it on a FIELD_WORK day is allowed transiently; it merely
//     flags the entry incomplete);
//   - joint work must reference someone other than the owner.
//
// Changing the territory drops the entry's cached route order, since the
// optimizer inputs changed.
func (s *PlanService) UpdateEntry(ctx context.Context, caller domain.Caller, planID uuid.UUID, date string, upd EntryUpdate) (domain.MonthlyTourPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: %w", err)
	}
	if plan.UserID != caller.UID && !caller.Role.CanApprove() {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: %w", domain.ErrForbidden)
	}
	if !plan.Editable() {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: status %s: %w", plan.Status, domain.ErrPlanLocked)
	}

	idx := plan.EntryIndex(date)
	if idx < 0 {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: no entry for %s: %w", date, domain.ErrNotFound)
	}

	if _, ok := domain.ParseActivityType(string(upd.ActivityType)); !ok {
		return domain.MonthlyTourPlan{}, fmt.Errorf("%w: unknown activity type %q", domain.ErrValidation, upd.ActivityType)
	}
	if upd.JointWorkWithUID != nil && *upd.JointWorkWithUID == plan.UserID {
		return domain.MonthlyTourPlan{}, fmt.Errorf("%w: joint work cannot reference the plan owner", domain.ErrValidation)
	}

	entry := plan.Entries[idx]
	entry.ActivityType = upd.ActivityType
	entry.JointWorkWithUID = upd.JointWorkWithUID
	entry.Notes = upd.Notes

	if upd.TerritoryID == nil {
		entry.TerritoryID = nil
		entry.TerritoryName = ""
		entry.RouteCustomerIDs = nil
	} else {
		owner, err := s.users.GetByID(ctx, plan.UserID)
		if err != nil {
			return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: owner lookup: %w", err)
		}
		territory, ok := assignedTerritory(owner, *upd.TerritoryID)
		if !ok {
			return domain.MonthlyTourPlan{}, fmt.Errorf("%w: territory %s is not assigned to the plan owner", domain.ErrValidation, upd.TerritoryID)
		}

		if entry.TerritoryID == nil || *entry.TerritoryID != territory.ID {
			entry.RouteCustomerIDs = nil
		}
		entry.TerritoryID = &territory.ID
		entry.TerritoryName = territory.Name
	}

	plan.Entries[idx] = entry

	updated, err := s.plans.Update(ctx, plan)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.UpdateEntry: %w", err)
	}
	return updated, nil
}

// Submit moves the caller's own plan from DRAFT or REJECTED to SUBMITTED.
// Submission does not validate entry completeness: incomplete FIELD_WORK
// days are flagged to the user but do not block, matching how the field
// force actually files plans.
func (s *PlanService) Submit(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error) {
	return s.transition(ctx, caller, planID, domain.StatusSubmitted)
}

// Approve moves a SUBMITTED plan to APPROVED, making it read-only.
// Requires approval authority; self-approval is rejected.
func (s *PlanService) Approve(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error) {
	return s.transition(ctx, caller, planID, domain.StatusApproved)
}

// Reject moves a SUBMITTED plan to REJECTED, returning control to the owner
// for edits and re-submission. Requires approval authority.
func (s *PlanService) Reject(ctx context.Context, caller domain.Caller, planID uuid.UUID) (domain.MonthlyTourPlan, error) {
	return s.transition(ctx, caller, planID, domain.StatusRejected)
}

// transition loads the plan, checks who may drive the move, applies the
// state machine, and saves. Authorization is checked before the transition
// so a forbidden caller learns nothing about the plan's current status.
func (s *PlanService) transition(ctx context.Context, caller domain.Caller, planID uuid.UUID, to domain.PlanStatus) (domain.MonthlyTourPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: %w", err)
	}

	switch to {
	case domain.StatusSubmitted:
		// Only the owner files their plan.
		if plan.UserID != caller.UID {
			return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: submit by non-owner: %w", domain.ErrForbidden)
		}
	case domain.StatusApproved, domain.StatusRejected:
		if !caller.Role.CanApprove() {
			return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: caller lacks approval authority: %w", domain.ErrForbidden)
		}
		if plan.UserID == caller.UID {
			return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: self-approval: %w", domain.ErrForbidden)
		}
	default:
		return domain.MonthlyTourPlan{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, plan.Status, to)
	}

	if err := plan.Transition(to); err != nil {
		return domain.MonthlyTourPlan{}, err
	}

	updated, err := s.plans.Update(ctx, plan)
	if err != nil {
		return domain.MonthlyTourPlan{}, fmt.Errorf("service.PlanService.transition: %w", err)
	}
	return updated, nil
}

// assignedTerritory finds the territory in the owner's assignment list.
func assignedTerritory(owner domain.User, id uuid.UUID) (domain.Territory, bool) {
	for _, t := range owner.Territories {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Territory{}, false
}
