package mappers

import (
	"encoding/json"
	"fmt"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/biztime"
)

// GenerationRunMapper converts run results to audit rows and back.
type GenerationRunMapper interface {
	ToModel(result *dto.GenerationResult) (*models.GenerationRunModel, error)
	ToResult(model *models.GenerationRunModel) (*dto.GenerationResult, error)
}

type generationRunMapper struct{}

func NewGenerationRunMapper() GenerationRunMapper {
	return &generationRunMapper{}
}

func (m *generationRunMapper) ToModel(result *dto.GenerationResult) (*models.GenerationRunModel, error) {
	items, err := json.Marshal(result.CreatedItems)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal created items: %w", err)
	}
	oplog, err := json.Marshal(result.OperationLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation log: %w", err)
	}

	model := &models.GenerationRunModel{
		RunID:           result.RunID,
		TriggerType:     string(result.Trigger),
		State:           string(result.State),
		PlansConsidered: result.PlansConsidered,
		PlansProcessed:  result.PlansProcessed,
		CreatedCount:    result.CreatedCount,
		SkippedCount:    result.SkippedCount,
		ErrorCount:      result.ErrorCount,
		CreatedItems:    items,
		OperationLog:    oplog,
		ErrorMessage:    result.Error,
		StartedAt:       biztime.ToMillis(result.StartedAt),
		FinishedAt:      biztime.ToMillis(result.FinishedAt),
	}
	if result.Plan != nil {
		model.PlanCode = result.Plan.Code
	}
	return model, nil
}

func (m *generationRunMapper) ToResult(model *models.GenerationRunModel) (*dto.GenerationResult, error) {
	result := &dto.GenerationResult{
		RunID:           model.RunID,
		Trigger:         dto.Trigger(model.TriggerType),
		State:           dto.RunState(model.State),
		PlansConsidered: model.PlansConsidered,
		PlansProcessed:  model.PlansProcessed,
		CreatedCount:    model.CreatedCount,
		SkippedCount:    model.SkippedCount,
		ErrorCount:      model.ErrorCount,
		CreatedItems:    []dto.CreatedItem{},
		OperationLog:    []dto.LogEntry{},
		Error:           model.ErrorMessage,
		StartedAt:       biztime.FromMillis(model.StartedAt),
		FinishedAt:      biztime.FromMillis(model.FinishedAt),
	}
	if model.PlanCode != "" {
		result.Plan = &dto.PlanSummary{Code: model.PlanCode}
	}
	if len(model.CreatedItems) > 0 {
		if err := json.Unmarshal(model.CreatedItems, &result.CreatedItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal created items: %w", err)
		}
	}
	if len(model.OperationLog) > 0 {
		if err := json.Unmarshal(model.OperationLog, &result.OperationLog); err != nil {
			return nil, fmt.Errorf("failed to unmarshal operation log: %w", err)
		}
	}
	return result, nil
}
