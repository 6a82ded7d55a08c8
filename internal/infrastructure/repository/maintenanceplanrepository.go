package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cmms/internal/domain/maintenance"
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/infrastructure/persistence/mappers"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/db"
	"cmms/internal/shared/mapper"
)

type MaintenancePlanRepository struct {
	db     *gorm.DB
	mapper mappers.MaintenancePlanMapper
}

func NewMaintenancePlanRepository(db *gorm.DB) *MaintenancePlanRepository {
	return &MaintenancePlanRepository{
		db:     db,
		mapper: mappers.NewMaintenancePlanMapper(),
	}
}

func (r *MaintenancePlanRepository) GetByCode(ctx context.Context, code string) (*maintenance.Plan, error) {
	var model models.MaintenancePlanModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, maintenance.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get maintenance plan: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// ListActive returns active plans ordered by code.
func (r *MaintenancePlanRepository) ListActive(ctx context.Context) ([]*maintenance.Plan, error) {
	var list []*models.MaintenancePlanModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("status = ?", vo.PlanStatusActive.String()).
		Order("code ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list active maintenance plans: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *MaintenancePlanRepository) ListActivities(ctx context.Context, planID uint) ([]*maintenance.PlanActivity, error) {
	var list []*models.MaintenancePlanActivityModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("plan_id = ?", planID).
		Order("sort_order ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list plan activities: %w", err)
	}

	return mapper.MapSlice(list, r.mapper.ActivityToEntity), nil
}

func (r *MaintenancePlanRepository) IncrementGeneratedCount(ctx context.Context, planID uint, delta int) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.MaintenancePlanModel{}).
		Where("id = ?", planID).
		UpdateColumn("generated_count", gorm.Expr("generated_count + ?", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to increment generated count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return maintenance.ErrPlanNotFound
	}
	return nil
}
