package maintenance

import (
	"context"
	"strings"
	"time"

	vo "cmms/internal/domain/maintenance/valueobjects"
)

type PlanRepository interface {
	GetByCode(ctx context.Context, code string) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
	ListActivities(ctx context.Context, planID uint) ([]*PlanActivity, error)
	// IncrementGeneratedCount bumps the denormalized counter. Callers treat
	// failures as non-fatal.
	IncrementGeneratedCount(ctx context.Context, planID uint, delta int) error
}

type WorkOrderRepository interface {
	// Create persists the work order together with its activities.
	Create(ctx context.Context, wo *WorkOrder) error
	Exists(ctx context.Context, filter WorkOrderFilter) (bool, error)
	ListByPlan(ctx context.Context, planID uint) ([]*WorkOrder, error)
	MaxSequenceNumber(ctx context.Context, planID uint) (int, error)
}

// WorkOrderFilter selects work orders. Nil fields are not constrained; all
// set fields must match.
type WorkOrderFilter struct {
	PlanID              *uint
	EquipmentID         *uint
	Category            *vo.WorkOrderCategory
	ScheduledDate       *time.Time
	SequenceNumber      *int
	RecurrenceLabel     *string
	// DescriptionContains matches substrings case-insensitively.
	DescriptionContains []string
	// DescriptionSequence requires the description to carry the sequence
	// marker for this number, not followed by another digit.
	DescriptionSequence *int
	OpenedFrom          *time.Time
	OpenedTo            *time.Time
}

// Matches evaluates the filter in memory with the same semantics the
// repositories implement in SQL.
func (f WorkOrderFilter) Matches(wo *WorkOrder) bool {
	if f.PlanID != nil && (wo.PlanID() == nil || *wo.PlanID() != *f.PlanID) {
		return false
	}
	if f.EquipmentID != nil && wo.EquipmentID() != *f.EquipmentID {
		return false
	}
	if f.Category != nil && wo.Category() != *f.Category {
		return false
	}
	if f.ScheduledDate != nil && (wo.ScheduledDate() == nil || !wo.ScheduledDate().Equal(*f.ScheduledDate)) {
		return false
	}
	if f.SequenceNumber != nil && wo.SequenceNumber() != *f.SequenceNumber {
		return false
	}
	if f.RecurrenceLabel != nil && wo.RecurrenceLabel() != *f.RecurrenceLabel {
		return false
	}
	if len(f.DescriptionContains) > 0 {
		desc := strings.ToLower(wo.Description())
		for _, s := range f.DescriptionContains {
			if !strings.Contains(desc, strings.ToLower(s)) {
				return false
			}
		}
	}
	if f.DescriptionSequence != nil && !HasSequenceMarker(wo.Description(), *f.DescriptionSequence) {
		return false
	}
	if f.OpenedFrom != nil && wo.OpenedDate().Before(*f.OpenedFrom) {
		return false
	}
	if f.OpenedTo != nil && wo.OpenedDate().After(*f.OpenedTo) {
		return false
	}
	return true
}
