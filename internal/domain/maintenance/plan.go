// Package maintenance holds the preventive-maintenance domain: plans, the
// work orders materialized from them, occurrence arithmetic and duplicate
// detection.
package maintenance

import (
	"fmt"
	"time"

	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
)

const (
	DefaultCrewSize       = 1
	DefaultHoursPerPerson = 1.0
)

// Plan is a preventive maintenance plan (PMP). The generator only reads it,
// apart from the denormalized generated counter.
type Plan struct {
	id                 uint
	tenantID           uint
	code               string
	description        string
	equipmentID        uint
	recurrenceLabel    string
	startDate          *time.Time
	endDate            *time.Time
	crewSize           int
	hoursPerPerson     float64
	responsibleUserIDs []uint
	status             vo.PlanStatus
	generatedCount     int
}

// PlanParams carries the persisted attributes of a plan.
type PlanParams struct {
	ID                 uint
	TenantID           uint
	Code               string
	Description        string
	EquipmentID        uint
	RecurrenceLabel    string
	StartDate          *time.Time
	EndDate            *time.Time
	CrewSize           int
	HoursPerPerson     float64
	ResponsibleUserIDs []uint
	Status             vo.PlanStatus
	GeneratedCount     int
}

// ReconstructPlan rebuilds a plan loaded from storage.
func ReconstructPlan(p PlanParams) (*Plan, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if p.Code == "" {
		return nil, fmt.Errorf("plan code is required")
	}
	if !p.Status.IsValid() {
		return nil, fmt.Errorf("invalid plan status %q", p.Status)
	}

	plan := &Plan{
		id:              p.ID,
		tenantID:        p.TenantID,
		code:            p.Code,
		description:     p.Description,
		equipmentID:     p.EquipmentID,
		recurrenceLabel: p.RecurrenceLabel,
		crewSize:        p.CrewSize,
		hoursPerPerson:  p.HoursPerPerson,
		status:          p.Status,
		generatedCount:  p.GeneratedCount,
	}
	if p.StartDate != nil {
		d := biztime.NormalizeDate(*p.StartDate)
		plan.startDate = &d
	}
	if p.EndDate != nil {
		d := biztime.NormalizeDate(*p.EndDate)
		plan.endDate = &d
	}
	plan.responsibleUserIDs = append([]uint(nil), p.ResponsibleUserIDs...)
	return plan, nil
}

func (p *Plan) ID() uint { return p.id }
func (p *Plan) TenantID() uint { return p.tenantID }
func (p *Plan) Code() string { return p.code }
func (p *Plan) Description() string { return p.description }
func (p *Plan) EquipmentID() uint { return p.equipmentID }
func (p *Plan) RecurrenceLabel() string { return p.recurrenceLabel }
func (p *Plan) Status() vo.PlanStatus { return p.status }
func (p *Plan) GeneratedCount() int { return p.generatedCount }
func (p *Plan) StartDate() *time.Time { return p.startDate }
func (p *Plan) EndDate() *time.Time { return p.endDate }

func (p *Plan) ResponsibleUserIDs() []uint {
	ids := make([]uint, len(p.responsibleUserIDs))
	copy(ids, p.responsibleUserIDs)
	return ids
}

// IsSchedulable reports whether the plan can produce occurrences at all.
func (p *Plan) IsSchedulable() bool {
	return p.status.IsActive() && p.startDate != nil
}

// IsClosed reports whether the plan's end date is on or before asOf.
func (p *Plan) IsClosed(asOf time.Time) bool {
	return p.endDate != nil && !p.endDate.After(biztime.NormalizeDate(asOf))
}

// PrimaryResponsible returns the first responsible user, if any.
func (p *Plan) PrimaryResponsible() (uint, bool) {
	if len(p.responsibleUserIDs) == 0 {
		return 0, false
	}
	return p.responsibleUserIDs[0], true
}

// CrewSize returns the crew size, defaulting to one person.
func (p *Plan) CrewSize() int {
	if p.crewSize <= 0 {
		return DefaultCrewSize
	}
	return p.crewSize
}

// HoursPerPerson returns the planned hours, defaulting to one hour.
func (p *Plan) HoursPerPerson() float64 {
	if p.hoursPerPerson <= 0 {
		return DefaultHoursPerPerson
	}
	return p.hoursPerPerson
}

func (p *Plan) PersonHours() float64 {
	return float64(p.CrewSize()) * p.HoursPerPerson()
}

// Occurrences lists the plan's due dates through asOf for the given class.
func (p *Plan) Occurrences(class vo.RecurrenceClass, asOf time.Time) []time.Time {
	if p.startDate == nil {
		return nil
	}
	return Occurrences(*p.startDate, p.endDate, class, asOf)
}
