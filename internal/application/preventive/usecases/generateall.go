package usecases

import (
	"context"
	"fmt"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

type GenerateAllCommand struct {
	Trigger dto.Trigger
}

// GenerateAllUseCase generates work orders for every active plan.
type GenerateAllUseCase struct {
	planRepo  maintenance.PlanRepository
	processor *PlanProcessor
	runner    *GenerationRunner
	clock     biztime.Clock
	logger    logger.Interface
}

func NewGenerateAllUseCase(
	planRepo maintenance.PlanRepository,
	processor *PlanProcessor,
	runner *GenerationRunner,
	clock biztime.Clock,
	logger logger.Interface,
) *GenerateAllUseCase {
	return &GenerateAllUseCase{
		planRepo:  planRepo,
		processor: processor,
		runner:    runner,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *GenerateAllUseCase) Execute(ctx context.Context, cmd GenerateAllCommand) (*dto.GenerationResult, error) {
	trigger := cmd.Trigger
	if trigger == "" {
		trigger = dto.TriggerManual
	}

	return uc.runner.Run(ctx, trigger, func(ctx context.Context, rec *runRecorder) error {
		plans, err := uc.planRepo.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("failed to list active plans: %w", err)
		}

		asOf := biztime.Today(uc.clock)
		rec.info("", "%d active plans, generating through %s", len(plans), biztime.FormatDate(asOf))

		for _, plan := range plans {
			if err := uc.processor.Process(ctx, plan, asOf, rec); err != nil {
				return err
			}
		}
		return nil
	})
}
