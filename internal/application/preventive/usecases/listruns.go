package usecases

import (
	"context"
	"fmt"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/shared/logger"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

// ListRunsUseCase returns recent generation runs, newest first. Without a
// run log store only the last in-process run is known.
type ListRunsUseCase struct {
	store  RunLogStore
	runner *GenerationRunner
	logger logger.Interface
}

func NewListRunsUseCase(store RunLogStore, runner *GenerationRunner, logger logger.Interface) *ListRunsUseCase {
	return &ListRunsUseCase{store: store, runner: runner, logger: logger}
}

func (uc *ListRunsUseCase) Execute(ctx context.Context, limit int) ([]*dto.GenerationResult, error) {
	if limit <= 0 {
		limit = defaultRunListLimit
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}

	if uc.store == nil {
		if last := uc.runner.LastRun(); last != nil {
			return []*dto.GenerationResult{last}, nil
		}
		return []*dto.GenerationResult{}, nil
	}

	runs, err := uc.store.Recent(ctx, limit)
	if err != nil {
		uc.logger.Errorw("failed to list generation runs", "error", err)
		return nil, fmt.Errorf("failed to list generation runs: %w", err)
	}
	return runs, nil
}
