package valueobjects

import "fmt"

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusInactive PlanStatus = "inactive"
)

func (s PlanStatus) String() string {
	return string(s)
}

func (s PlanStatus) IsValid() bool {
	return s == PlanStatusActive || s == PlanStatusInactive
}

func (s PlanStatus) IsActive() bool {
	return s == PlanStatusActive
}

func NewPlanStatus(s string) (PlanStatus, error) {
	ps := PlanStatus(s)
	if !ps.IsValid() {
		return "", fmt.Errorf("invalid plan status: %s", s)
	}
	return ps, nil
}

// WorkOrderStatus covers the whole work-order lifecycle. The generator only
// ever creates open or programmed orders; the rest belong to execution.
type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "open"
	WorkOrderStatusProgrammed WorkOrderStatus = "programmed"
	WorkOrderStatusInProgress WorkOrderStatus = "in_progress"
	WorkOrderStatusCompleted  WorkOrderStatus = "completed"
	WorkOrderStatusCancelled  WorkOrderStatus = "cancelled"
)

var validWorkOrderStatuses = map[WorkOrderStatus]bool{
	WorkOrderStatusOpen:       true,
	WorkOrderStatusProgrammed: true,
	WorkOrderStatusInProgress: true,
	WorkOrderStatusCompleted:  true,
	WorkOrderStatusCancelled:  true,
}

func (s WorkOrderStatus) String() string {
	return string(s)
}

func (s WorkOrderStatus) IsValid() bool {
	return validWorkOrderStatuses[s]
}

func NewWorkOrderStatus(s string) (WorkOrderStatus, error) {
	ws := WorkOrderStatus(s)
	if !ws.IsValid() {
		return "", fmt.Errorf("invalid work order status: %s", s)
	}
	return ws, nil
}

type WorkOrderCategory string

const (
	CategoryPreventive WorkOrderCategory = "preventive"
	CategoryCorrective WorkOrderCategory = "corrective"
)

func (c WorkOrderCategory) String() string {
	return string(c)
}

func (c WorkOrderCategory) IsValid() bool {
	return c == CategoryPreventive || c == CategoryCorrective
}

// ReviewStatus is the per-checklist-item outcome recorded during execution.
type ReviewStatus string

const (
	ReviewPending ReviewStatus = "pending"
	ReviewPassed  ReviewStatus = "passed"
	ReviewFailed  ReviewStatus = "failed"
	ReviewSkipped ReviewStatus = "not_applicable"
)

func (r ReviewStatus) String() string {
	return string(r)
}

func (r ReviewStatus) IsValid() bool {
	switch r {
	case ReviewPending, ReviewPassed, ReviewFailed, ReviewSkipped:
		return true
	}
	return false
}
