package usecases

import (
	"context"

	"cmms/internal/application/preventive/dto"
)

// RunLogStore persists finished generation runs for later inspection.
type RunLogStore interface {
	Save(ctx context.Context, result *dto.GenerationResult) error
	Recent(ctx context.Context, limit int) ([]*dto.GenerationResult, error)
}

// RunNotifier reports automatic runs that need attention.
type RunNotifier interface {
	NotifyRun(ctx context.Context, result *dto.GenerationResult) error
}
