package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
	apperrors "cmms/internal/shared/errors"
	"cmms/internal/shared/logger"
)

type GenerateForPlanCommand struct {
	PlanCode string
	Trigger  dto.Trigger
}

// GenerateForPlanUseCase generates the missing work orders of a single plan,
// for ad hoc triggering.
type GenerateForPlanUseCase struct {
	planRepo  maintenance.PlanRepository
	processor *PlanProcessor
	runner    *GenerationRunner
	clock     biztime.Clock
	logger    logger.Interface
}

func NewGenerateForPlanUseCase(
	planRepo maintenance.PlanRepository,
	processor *PlanProcessor,
	runner *GenerationRunner,
	clock biztime.Clock,
	logger logger.Interface,
) *GenerateForPlanUseCase {
	return &GenerateForPlanUseCase{
		planRepo:  planRepo,
		processor: processor,
		runner:    runner,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *GenerateForPlanUseCase) Execute(ctx context.Context, cmd GenerateForPlanCommand) (*dto.GenerationResult, error) {
	code := strings.TrimSpace(cmd.PlanCode)
	if code == "" {
		return nil, apperrors.NewValidationError("plan code is required")
	}
	trigger := cmd.Trigger
	if trigger == "" {
		trigger = dto.TriggerManual
	}

	plan, err := uc.planRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, maintenance.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("maintenance plan not found", code)
		}
		uc.logger.Errorw("failed to get plan", "plan_code", code, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	class, _ := vo.ParseRecurrence(plan.RecurrenceLabel())
	return uc.runner.Run(ctx, trigger, func(ctx context.Context, rec *runRecorder) error {
		rec.result.Plan = &dto.PlanSummary{
			ID:              plan.ID(),
			Code:            plan.Code(),
			Description:     plan.Description(),
			Status:          plan.Status().String(),
			RecurrenceLabel: plan.RecurrenceLabel(),
			Recurrence:      class.String(),
		}
		err := uc.processor.Process(ctx, plan, biztime.Today(uc.clock), rec)
		rec.result.Plan.GeneratedCount = plan.GeneratedCount() + rec.result.CreatedCount
		return err
	})
}
