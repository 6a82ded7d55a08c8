package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cmms/internal/domain/maintenance"
	"cmms/internal/infrastructure/persistence/mappers"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/db"
	"cmms/internal/shared/mapper"
)

// likeEscaper escapes LIKE wildcards with '!', which both MySQL and SQLite
// accept as an ESCAPE character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type WorkOrderRepository struct {
	db     *gorm.DB
	mapper mappers.WorkOrderMapper
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{
		db:     db,
		mapper: mappers.NewWorkOrderMapper(),
	}
}

// Create inserts the work order and its activities. Callers wrap it in a
// transaction so both land or neither does.
func (r *WorkOrderRepository) Create(ctx context.Context, wo *maintenance.WorkOrder) error {
	model := r.mapper.ToModel(wo)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create work order: %w", err)
	}
	if err := wo.SetID(model.ID); err != nil {
		return err
	}

	activities := r.mapper.ActivitiesToModels(wo)
	if len(activities) == 0 {
		return nil
	}
	if err := tx.Create(&activities).Error; err != nil {
		return fmt.Errorf("failed to create work order activities: %w", err)
	}
	for i, a := range wo.Activities() {
		a.ID = activities[i].ID
	}
	return nil
}

func (r *WorkOrderRepository) Exists(ctx context.Context, filter maintenance.WorkOrderFilter) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	q := applyWorkOrderFilter(tx.Model(&models.WorkOrderModel{}), filter)

	if filter.DescriptionSequence == nil {
		var ids []uint
		if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
			return false, fmt.Errorf("failed to query work orders: %w", err)
		}
		return len(ids) > 0, nil
	}

	// LIKE cannot express the digit boundary after the marker; it only
	// narrows the candidates, which are then checked here.
	var descriptions []string
	if err := q.Pluck("description", &descriptions).Error; err != nil {
		return false, fmt.Errorf("failed to query work orders: %w", err)
	}
	for _, d := range descriptions {
		if maintenance.HasSequenceMarker(d, *filter.DescriptionSequence) {
			return true, nil
		}
	}
	return false, nil
}

// ListByPlan returns the plan's work orders without their activities.
func (r *WorkOrderRepository) ListByPlan(ctx context.Context, planID uint) ([]*maintenance.WorkOrder, error) {
	var list []*models.WorkOrderModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.
		Where("plan_id = ?", planID).
		Order("sequence_number ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list work orders: %w", err)
	}

	return mapper.MapSliceWithError(list, func(m *models.WorkOrderModel) (*maintenance.WorkOrder, error) {
		return r.mapper.ToEntity(m, nil)
	})
}

// GetByID loads a work order with its activities.
func (r *WorkOrderRepository) GetByID(ctx context.Context, id uint) (*maintenance.WorkOrder, error) {
	var model models.WorkOrderModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get work order: %w", err)
	}

	var activities []*models.WorkOrderActivityModel
	if err := tx.
		Where("work_order_id = ?", id).
		Order("sort_order ASC, id ASC").
		Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to load work order activities: %w", err)
	}
	return r.mapper.ToEntity(&model, activities)
}

func (r *WorkOrderRepository) MaxSequenceNumber(ctx context.Context, planID uint) (int, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var highest int
	if err := tx.Model(&models.WorkOrderModel{}).
		Where("plan_id = ?", planID).
		Select("COALESCE(MAX(sequence_number), 0)").
		Scan(&highest).Error; err != nil {
		return 0, fmt.Errorf("failed to read highest sequence number: %w", err)
	}
	return highest, nil
}

func applyWorkOrderFilter(q *gorm.DB, f maintenance.WorkOrderFilter) *gorm.DB {
	if f.PlanID != nil {
		q = q.Where("plan_id = ?", *f.PlanID)
	}
	if f.EquipmentID != nil {
		q = q.Where("equipment_id = ?", *f.EquipmentID)
	}
	if f.Category != nil {
		q = q.Where("category = ?", f.Category.String())
	}
	if f.ScheduledDate != nil {
		q = q.Where("scheduled_date = ?", biztime.ToMillis(*f.ScheduledDate))
	}
	if f.SequenceNumber != nil {
		q = q.Where("sequence_number = ?", *f.SequenceNumber)
	}
	if f.RecurrenceLabel != nil {
		q = q.Where("recurrence_label = ?", *f.RecurrenceLabel)
	}
	for _, s := range f.DescriptionContains {
		q = q.Where("LOWER(description) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(s))+"%")
	}
	if f.DescriptionSequence != nil {
		marker := maintenance.SequenceMarker(*f.DescriptionSequence)
		q = q.Where("description LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(marker)+"%")
	}
	if f.OpenedFrom != nil {
		q = q.Where("opened_date >= ?", biztime.ToMillis(*f.OpenedFrom))
	}
	if f.OpenedTo != nil {
		q = q.Where("opened_date <= ?", biztime.ToMillis(*f.OpenedTo))
	}
	return q
}
