package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/infrastructure/persistence/mappers"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/db"
	"cmms/internal/shared/mapper"
)

// GenerationRunRepository keeps the audit log of generation runs in the
// database, trimmed to the newest maxSize rows when maxSize > 0.
type GenerationRunRepository struct {
	db      *gorm.DB
	mapper  mappers.GenerationRunMapper
	maxSize int
}

func NewGenerationRunRepository(db *gorm.DB, maxSize int) *GenerationRunRepository {
	return &GenerationRunRepository{
		db:      db,
		mapper:  mappers.NewGenerationRunMapper(),
		maxSize: maxSize,
	}
}

func (r *GenerationRunRepository) Save(ctx context.Context, result *dto.GenerationResult) error {
	model, err := r.mapper.ToModel(result)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to save generation run: %w", err)
	}
	return r.trim(ctx)
}

func (r *GenerationRunRepository) trim(ctx context.Context) error {
	if r.maxSize <= 0 {
		return nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	var cutoff []uint
	if err := tx.Model(&models.GenerationRunModel{}).
		Order("id DESC").
		Offset(r.maxSize).
		Limit(1).
		Pluck("id", &cutoff).Error; err != nil {
		return fmt.Errorf("failed to find generation run cutoff: %w", err)
	}
	if len(cutoff) == 0 {
		return nil
	}
	if err := tx.Where("id <= ?", cutoff[0]).Delete(&models.GenerationRunModel{}).Error; err != nil {
		return fmt.Errorf("failed to trim generation runs: %w", err)
	}
	return nil
}

// Recent returns the newest runs first.
func (r *GenerationRunRepository) Recent(ctx context.Context, limit int) ([]*dto.GenerationResult, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var list []*models.GenerationRunModel
	if err := tx.Order("started_at DESC, id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list generation runs: %w", err)
	}

	return mapper.MapSliceWithError(list, r.mapper.ToResult)
}
