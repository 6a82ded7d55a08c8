package maintenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
)

func newTestPlan(t *testing.T, mutate func(p *PlanParams)) *Plan {
	t.Helper()
	start := biztime.Date(2025, time.September, 5)
	params := PlanParams{
		ID:              10,
		TenantID:        1,
		Code:            "PMP-0010",
		Description:     "Lubrificar rolamentos",
		EquipmentID:     20,
		RecurrenceLabel: "Semanal",
		StartDate:       &start,
		Status:          vo.PlanStatusActive,
	}
	if mutate != nil {
		mutate(&params)
	}
	plan, err := ReconstructPlan(params)
	require.NoError(t, err)
	return plan
}

func TestReconstructPlanValidation(t *testing.T) {
	tests := []struct {
		name   string
		params PlanParams
	}{
		{"zero id", PlanParams{Code: "X", Status: vo.PlanStatusActive}},
		{"empty code", PlanParams{ID: 1, Status: vo.PlanStatusActive}},
		{"bad status", PlanParams{ID: 1, Code: "X", Status: "paused"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReconstructPlan(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestPlanEffortDefaults(t *testing.T) {
	plan := newTestPlan(t, nil)
	assert.Equal(t, DefaultCrewSize, plan.CrewSize())
	assert.Equal(t, DefaultHoursPerPerson, plan.HoursPerPerson())
	assert.Equal(t, 1.0, plan.PersonHours())

	staffed := newTestPlan(t, func(p *PlanParams) {
		p.CrewSize = 3
		p.HoursPerPerson = 2.5
	})
	assert.Equal(t, 7.5, staffed.PersonHours())
}

func TestPlanSchedulable(t *testing.T) {
	assert.True(t, newTestPlan(t, nil).IsSchedulable())

	noStart := newTestPlan(t, func(p *PlanParams) { p.StartDate = nil })
	assert.False(t, noStart.IsSchedulable())
	assert.Empty(t, noStart.Occurrences(vo.RecurrenceWeekly, biztime.Date(2030, time.January, 1)))

	inactive := newTestPlan(t, func(p *PlanParams) { p.Status = vo.PlanStatusInactive })
	assert.False(t, inactive.IsSchedulable())
}

func TestPlanIsClosed(t *testing.T) {
	end := biztime.Date(2025, time.October, 1)
	plan := newTestPlan(t, func(p *PlanParams) { p.EndDate = &end })

	assert.False(t, plan.IsClosed(biztime.Date(2025, time.September, 30)))
	assert.True(t, plan.IsClosed(end))
	assert.True(t, plan.IsClosed(biztime.Date(2025, time.December, 1)))
	assert.False(t, newTestPlan(t, nil).IsClosed(end))
}

func TestPlanPrimaryResponsible(t *testing.T) {
	_, ok := newTestPlan(t, nil).PrimaryResponsible()
	assert.False(t, ok)

	plan := newTestPlan(t, func(p *PlanParams) { p.ResponsibleUserIDs = []uint{7, 9} })
	id, ok := plan.PrimaryResponsible()
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	ids := plan.ResponsibleUserIDs()
	ids[0] = 99
	id, _ = plan.PrimaryResponsible()
	assert.Equal(t, uint(7), id, "getter must return a copy")
}
