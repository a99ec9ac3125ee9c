package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityType enumerates what a field user plans to do on a given day.
type ActivityType string

const (
	ActivityFieldWork ActivityType = "FIELD_WORK"
	ActivityMeeting   ActivityType = "MEETING"
	ActivityLeave     ActivityType = "LEAVE"
	ActivityHoliday   ActivityType = "HOLIDAY"
	ActivityAdminDay  ActivityType = "ADMIN_DAY"
	// ActivitySunday is the derived marker applied to Sundays when a plan is
	// generated. It is a default, not a rule — users may overwrite it.
	ActivitySunday ActivityType = "SUNDAY"
)

// ParseActivityType validates a raw activity type string.
func ParseActivityType(s string) (ActivityType, bool) {
	switch ActivityType(s) {
	case ActivityFieldWork, ActivityMeeting, ActivityLeave,
		ActivityHoliday, ActivityAdminDay, ActivitySunday:
		return ActivityType(s), true
	}
	return "", false
}

// PlanStatus is the lifecycle state of a monthly tour plan.
type PlanStatus string

const (
	StatusDraft     PlanStatus = "DRAFT"
	StatusSubmitted PlanStatus = "SUBMITTED"
	StatusApproved  PlanStatus = "APPROVED"
	StatusRejected  PlanStatus = "REJECTED"
)

// DateLayout is the wire format for entry dates: an ISO calendar date with no
// time component. Each entry's Date is unique within its plan.
const DateLayout = "2006-01-02"

// TourPlanEntry is one day's planned activity. Entries are generated at plan
// creation time, exactly one per calendar day of the month, and are never
// added or removed individually afterwards — only edited in place.
//
// RouteCustomerIDs caches the ordered output of the route optimizer for this
// day so regeneration is idempotent until inputs change.
type TourPlanEntry struct {
	Date             string       `json:"date"`
	ActivityType     ActivityType `json:"activity_type"`
	TerritoryID      *uuid.UUID   `json:"territory_id,omitempty"`
	TerritoryName    string       `json:"territory_name,omitempty"`
	JointWorkWithUID *uuid.UUID   `json:"joint_work_with_uid,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	RouteCustomerIDs []uuid.UUID  `json:"route_customer_ids,omitempty"`
}

// Incomplete reports whether the entry still needs attention before the plan
// is submitted: a FIELD_WORK day with no territory selected. Clearing the
// territory on an editable plan is allowed transiently, so this is advisory
// — submission does not enforce it.
func (e TourPlanEntry) Incomplete() bool {
	return e.ActivityType == ActivityFieldWork && e.TerritoryID == nil
}

// MonthlyTourPlan is the calendar of planned field activities for one user
// and one month. The plan exclusively owns its entries; no entry is shared
// across plans. The whole plan is the unit of consistency — saves replace
// the full entries document (last-write-wins, a known gap under concurrent
// editors).
//
// Month is 0-indexed (January = 0), matching the upstream data contract.
type MonthlyTourPlan struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Status    PlanStatus      `json:"status"`
	Entries   []TourPlanEntry `json:"entries"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DaysInMonth returns the number of calendar days in the given 0-indexed
// month. The day-0-of-next-month trick lets time.Date normalize for us.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewMonthlyTourPlan builds a DRAFT plan with one entry per calendar day.
// Sundays default to the SUNDAY activity marker; every other day defaults to
// FIELD_WORK with no territory. The Sunday default is applied here, once, at
// creation — it is never re-applied on read, so later user edits to Sunday
// entries always survive.
func NewMonthlyTourPlan(userID uuid.UUID, year, month int) (MonthlyTourPlan, error) {
	if month < 0 || month > 11 {
		return MonthlyTourPlan{}, fmt.Errorf("%w: month must be in [0, 11], got %d", ErrValidation, month)
	}
	if year < 2000 || year > 2100 {
		return MonthlyTourPlan{}, fmt.Errorf("%w: year %d is out of range", ErrValidation, year)
	}

	days := DaysInMonth(year, month)
	entries := make([]TourPlanEntry, 0, days)
	for day := 1; day <= days; day++ {
		date := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
		activity := ActivityFieldWork
		if date.Weekday() == time.Sunday {
			activity = ActivitySunday
		}
		entries = append(entries, TourPlanEntry{
			Date:         date.Format(DateLayout),
			ActivityType: activity,
		})
	}

	return MonthlyTourPlan{
		UserID:  userID,
		Year:    year,
		Month:   month,
		Status:  StatusDraft,
		Entries: entries,
	}, nil
}

// Editable reports whether entry edits are currently accepted.
// Plans are mutable in DRAFT and after rejection; SUBMITTED and APPROVED
// plans are read-only.
func (p MonthlyTourPlan) Editable() bool {
	return p.Status == StatusDraft || p.Status == StatusRejected
}

// EntryIndex returns the position of the entry with the given ISO date, or
// -1 when no such day exists in the plan.
func (p MonthlyTourPlan) EntryIndex(date string) int {
	for i, e := range p.Entries {
		if e.Date == date {
			return i
		}
	}
	return -1
}

// allowedTransitions is the full tour plan state machine. APPROVED is
// terminal for the planning period.
var allowedTransitions = map[PlanStatus][]PlanStatus{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusSubmitted},
	StatusApproved:  {},
}

// Transition moves the plan to the target status, or returns
// ErrInvalidTransition when the state machine does not permit the move.
// Invalid attempts never silently no-op. Authorization (who may trigger
// which transition) is enforced by the service layer, not here.
func (p *MonthlyTourPlan) Transition(to PlanStatus) error {
	for _, allowed := range allowedTransitions[p.Status] {
		if allowed == to {
			p.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
}
