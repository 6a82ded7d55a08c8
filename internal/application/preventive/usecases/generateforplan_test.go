package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	apperrors "cmms/internal/shared/errors"
)

func TestGenerateForPlan_OnlyTouchesThatPlan(t *testing.T) {
	target := planFixture(1, "PMP-001", "Mensal", datePtr(2025, time.July, 31), nil)
	other := planFixture(2, "PMP-002", "Semanal", datePtr(2025, time.September, 1), nil)
	f := newFixture(biztime.Date(2025, time.September, 30), target, other)

	result, err := f.single.Execute(context.Background(), GenerateForPlanCommand{PlanCode: " PMP-001 "})
	require.NoError(t, err)

	assert.Equal(t, 3, result.CreatedCount)
	assert.Equal(t, 1, result.PlansConsidered)
	require.NotNil(t, result.Plan)
	assert.Equal(t, "PMP-001", result.Plan.Code)
	assert.Equal(t, "monthly", result.Plan.Recurrence)
	assert.Equal(t, 3, result.Plan.GeneratedCount)
	assert.Equal(t, []string{"2025-07-31", "2025-08-31", "2025-09-30"}, []string{
		result.CreatedItems[0].OccurrenceDate,
		result.CreatedItems[1].OccurrenceDate,
		result.CreatedItems[2].OccurrenceDate,
	})
	assert.Empty(t, f.workOrders.sequences(2))

	require.Len(t, f.store.runs, 1)
	assert.NotNil(t, f.store.runs[0].Plan)
}

func TestGenerateForPlan_NotFound(t *testing.T) {
	f := newFixture(biztime.Date(2025, time.September, 30))

	result, err := f.single.Execute(context.Background(), GenerateForPlanCommand{PlanCode: "PMP-404"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Equal(t, dto.RunStateIdle, f.runner.State())
	assert.Empty(t, f.store.runs)
}

func TestGenerateForPlan_RequiresCode(t *testing.T) {
	f := newFixture(biztime.Date(2025, time.September, 30))

	_, err := f.single.Execute(context.Background(), GenerateForPlanCommand{PlanCode: "  "})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestGenerateForPlan_InactivePlanCreatesNothing(t *testing.T) {
	plan := planFixture(1, "PMP-001", "Mensal", datePtr(2025, time.July, 1), func(p *maintenance.PlanParams) {
		p.Status = "inactive"
	})
	f := newFixture(biztime.Date(2025, time.September, 30), plan)

	result, err := f.single.Execute(context.Background(), GenerateForPlanCommand{PlanCode: "PMP-001"})
	require.NoError(t, err)
	assert.Equal(t, dto.RunStateCompleted, result.State)
	assert.Equal(t, 0, result.CreatedCount)
	assert.Equal(t, 0, result.PlansProcessed)
}
