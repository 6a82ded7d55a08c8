package maintenance

import (
	"fmt"
	"time"

	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
)

// WorkOrder (OS) is one concrete task instance.
type WorkOrder struct {
	id              uint
	tenantID        uint
	description     string
	planID          *uint
	equipmentID     uint
	category        vo.WorkOrderCategory
	openedDate      time.Time
	scheduledDate   *time.Time
	recurrenceLabel string
	sequenceNumber  int
	status          vo.WorkOrderStatus
	assigneeID      *uint
	assigneeName    string
	crewSize        int
	hoursPerPerson  float64
	personHours     float64
	locationID      uint
	siteID          uint
	zoneID          uint
	activities      []*WorkOrderActivity
	createdAt       time.Time
}

// Assignee is the technician a programmed work order is queued for.
type Assignee struct {
	UserID      uint
	DisplayName string
}

// PreventiveWorkOrderParams are the inputs for one plan occurrence.
type PreventiveWorkOrderParams struct {
	Plan           *Plan
	Equipment      *Equipment
	Location       *Location
	OccurrenceDate time.Time
	SequenceNumber int
	Assignee       *Assignee
	Activities     []*PlanActivity
	CreatedAt      time.Time
}

// NewPreventiveWorkOrder materializes one plan occurrence. With an assignee
// the order is programmed on the occurrence date; without one it is left
// open and unscheduled for triage.
func NewPreventiveWorkOrder(p PreventiveWorkOrderParams) (*WorkOrder, error) {
	if p.Plan == nil || p.Plan.ID() == 0 {
		return nil, fmt.Errorf("work order requires a persisted plan")
	}
	if p.Equipment == nil {
		return nil, ErrEquipmentNotFound
	}
	if p.Location == nil || p.Location.ID == 0 {
		return nil, ErrLocationUnresolved
	}
	if p.SequenceNumber < 1 {
		return nil, fmt.Errorf("sequence number must start at 1, got %d", p.SequenceNumber)
	}
	if p.OccurrenceDate.IsZero() {
		return nil, fmt.Errorf("occurrence date is required")
	}

	planID := p.Plan.ID()
	occurrence := biztime.NormalizeDate(p.OccurrenceDate)
	tenantID := p.Plan.TenantID()
	if tenantID == 0 {
		tenantID = p.Equipment.TenantID
	}

	wo := &WorkOrder{
		tenantID:        tenantID,
		description:     PreventiveDescription(p.Plan, p.Equipment.Tag, p.SequenceNumber),
		planID:          &planID,
		equipmentID:     p.Equipment.ID,
		category:        vo.CategoryPreventive,
		openedDate:      occurrence,
		recurrenceLabel: p.Plan.RecurrenceLabel(),
		sequenceNumber:  p.SequenceNumber,
		status:          vo.WorkOrderStatusOpen,
		crewSize:        p.Plan.CrewSize(),
		hoursPerPerson:  p.Plan.HoursPerPerson(),
		personHours:     p.Plan.PersonHours(),
		locationID:      p.Location.ID,
		siteID:          p.Location.SiteID,
		zoneID:          p.Location.ZoneID,
		activities:      ActivitiesFromTemplate(p.Activities),
		createdAt:       p.CreatedAt,
	}

	if p.Assignee != nil {
		userID := p.Assignee.UserID
		wo.assigneeID = &userID
		wo.assigneeName = p.Assignee.DisplayName
		wo.status = vo.WorkOrderStatusProgrammed
		wo.scheduledDate = &occurrence
	}

	return wo, nil
}

// WorkOrderParams carries the persisted attributes of a work order.
type WorkOrderParams struct {
	ID              uint
	TenantID        uint
	Description     string
	PlanID          *uint
	EquipmentID     uint
	Category        vo.WorkOrderCategory
	OpenedDate      time.Time
	ScheduledDate   *time.Time
	RecurrenceLabel string
	SequenceNumber  int
	Status          vo.WorkOrderStatus
	AssigneeID      *uint
	AssigneeName    string
	CrewSize        int
	HoursPerPerson  float64
	PersonHours     float64
	LocationID      uint
	SiteID          uint
	ZoneID          uint
	Activities      []*WorkOrderActivity
	CreatedAt       time.Time
}

// ReconstructWorkOrder rebuilds a work order loaded from storage. Legacy
// rows are accepted as they are, including statuses outside the known
// lifecycle; only the identity is checked.
func ReconstructWorkOrder(p WorkOrderParams) (*WorkOrder, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("work order ID cannot be zero")
	}
	return &WorkOrder{
		id:              p.ID,
		tenantID:        p.TenantID,
		description:     p.Description,
		planID:          p.PlanID,
		equipmentID:     p.EquipmentID,
		category:        p.Category,
		openedDate:      p.OpenedDate,
		scheduledDate:   p.ScheduledDate,
		recurrenceLabel: p.RecurrenceLabel,
		sequenceNumber:  p.SequenceNumber,
		status:          p.Status,
		assigneeID:      p.AssigneeID,
		assigneeName:    p.AssigneeName,
		crewSize:        p.CrewSize,
		hoursPerPerson:  p.HoursPerPerson,
		personHours:     p.PersonHours,
		locationID:      p.LocationID,
		siteID:          p.SiteID,
		zoneID:          p.ZoneID,
		activities:      p.Activities,
		createdAt:       p.CreatedAt,
	}, nil
}

func (w *WorkOrder) ID() uint { return w.id }
func (w *WorkOrder) TenantID() uint { return w.tenantID }
func (w *WorkOrder) Description() string { return w.description }
func (w *WorkOrder) PlanID() *uint { return w.planID }
func (w *WorkOrder) EquipmentID() uint { return w.equipmentID }
func (w *WorkOrder) Category() vo.WorkOrderCategory { return w.category }
func (w *WorkOrder) OpenedDate() time.Time { return w.openedDate }
func (w *WorkOrder) ScheduledDate() *time.Time { return w.scheduledDate }
func (w *WorkOrder) RecurrenceLabel() string { return w.recurrenceLabel }
func (w *WorkOrder) SequenceNumber() int { return w.sequenceNumber }
func (w *WorkOrder) Status() vo.WorkOrderStatus { return w.status }
func (w *WorkOrder) AssigneeID() *uint { return w.assigneeID }
func (w *WorkOrder) AssigneeName() string { return w.assigneeName }
func (w *WorkOrder) CrewSize() int { return w.crewSize }
func (w *WorkOrder) HoursPerPerson() float64 { return w.hoursPerPerson }
func (w *WorkOrder) PersonHours() float64 { return w.personHours }
func (w *WorkOrder) LocationID() uint { return w.locationID }
func (w *WorkOrder) SiteID() uint { return w.siteID }
func (w *WorkOrder) ZoneID() uint { return w.zoneID }
func (w *WorkOrder) CreatedAt() time.Time { return w.createdAt }
func (w *WorkOrder) Activities() []*WorkOrderActivity { return w.activities }

func (w *WorkOrder) IsProgrammed() bool {
	return w.status == vo.WorkOrderStatusProgrammed
}

// SetID records the identity assigned by storage.
func (w *WorkOrder) SetID(id uint) error {
	if w.id != 0 {
		return fmt.Errorf("work order ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("work order ID cannot be zero")
	}
	w.id = id
	for _, a := range w.activities {
		a.WorkOrderID = id
	}
	return nil
}
