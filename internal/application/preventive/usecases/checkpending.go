package usecases

import (
	"context"
	"fmt"
	"time"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

// CheckPendingUseCase counts occurrences that are due but have no work
// order yet. It never writes.
type CheckPendingUseCase struct {
	planRepo      maintenance.PlanRepository
	workOrderRepo maintenance.WorkOrderRepository
	resolver      *FrequencyResolver
	clock         biztime.Clock
	logger        logger.Interface
}

func NewCheckPendingUseCase(
	planRepo maintenance.PlanRepository,
	workOrderRepo maintenance.WorkOrderRepository,
	resolver *FrequencyResolver,
	clock biztime.Clock,
	logger logger.Interface,
) *CheckPendingUseCase {
	return &CheckPendingUseCase{
		planRepo:      planRepo,
		workOrderRepo: workOrderRepo,
		resolver:      resolver,
		clock:         clock,
		logger:        logger,
	}
}

func (uc *CheckPendingUseCase) Execute(ctx context.Context) (*dto.PendingOccurrencesResult, error) {
	plans, err := uc.planRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list active plans", "error", err)
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}

	asOf := biztime.Today(uc.clock)
	result := &dto.PendingOccurrencesResult{
		Plans: []dto.PendingPlan{},
		AsOf:  biztime.FormatDate(asOf),
	}

	for _, plan := range plans {
		if !plan.IsSchedulable() {
			continue
		}
		pending, err := uc.pendingForPlan(ctx, plan, asOf)
		if err != nil {
			uc.logger.Warnw("failed to check pending occurrences", "plan_code", plan.Code(), "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", plan.Code(), err))
			continue
		}
		if pending == nil {
			continue
		}
		result.Plans = append(result.Plans, *pending)
		result.TotalPending += pending.Pending
	}

	uc.logger.Debugw("pending occurrences checked",
		"plans_with_pending", len(result.Plans),
		"total_pending", result.TotalPending,
	)
	return result, nil
}

// pendingForPlan loads the plan's work orders once and runs the duplicate
// rules against that snapshot.
func (uc *CheckPendingUseCase) pendingForPlan(ctx context.Context, plan *maintenance.Plan, asOf time.Time) (*dto.PendingPlan, error) {
	class, _ := uc.resolver.Resolve(plan.Code(), plan.RecurrenceLabel())
	occurrences := plan.Occurrences(class, asOf)
	if len(occurrences) == 0 {
		return nil, nil
	}

	existing, err := uc.workOrderRepo.ListByPlan(ctx, plan.ID())
	if err != nil {
		return nil, err
	}
	guard := maintenance.NewDuplicateGuard(maintenance.WorkOrderSnapshot(existing))

	pending := dto.PendingPlan{
		PlanCode:        plan.Code(),
		Description:     plan.Description(),
		EquipmentID:     plan.EquipmentID(),
		RecurrenceLabel: plan.RecurrenceLabel(),
		Recurrence:      class.String(),
		Truncated:       maintenance.Truncated(occurrences),
	}
	for i, occurrence := range occurrences {
		exists, err := guard.Exists(ctx, maintenance.CandidateFor(plan, class, occurrence, i+1))
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		if pending.Pending == 0 {
			pending.OldestPending = biztime.FormatDate(occurrence)
		}
		pending.Pending++
	}

	if pending.Pending == 0 {
		return nil, nil
	}
	return &pending, nil
}
