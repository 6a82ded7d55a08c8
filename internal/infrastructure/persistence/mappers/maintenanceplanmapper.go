package mappers

import (
	"cmms/internal/domain/maintenance"
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/mapper"
)

// MaintenancePlanMapper converts between plans and their persistence models.
type MaintenancePlanMapper interface {
	ToEntity(model *models.MaintenancePlanModel) (*maintenance.Plan, error)
	ToEntities(models []*models.MaintenancePlanModel) ([]*maintenance.Plan, error)
	ToModel(plan *maintenance.Plan) *models.MaintenancePlanModel
	ActivityToEntity(model *models.MaintenancePlanActivityModel) *maintenance.PlanActivity
}

type maintenancePlanMapper struct{}

func NewMaintenancePlanMapper() MaintenancePlanMapper {
	return &maintenancePlanMapper{}
}

func (m *maintenancePlanMapper) ToEntity(model *models.MaintenancePlanModel) (*maintenance.Plan, error) {
	if model == nil {
		return nil, nil
	}
	return maintenance.ReconstructPlan(maintenance.PlanParams{
		ID:                 model.ID,
		TenantID:           model.TenantID,
		Code:               model.Code,
		Description:        model.Description,
		EquipmentID:        model.EquipmentID,
		RecurrenceLabel:    model.RecurrenceLabel,
		StartDate:          biztime.FromMillisPtr(model.StartDate),
		EndDate:            biztime.FromMillisPtr(model.EndDate),
		CrewSize:           model.CrewSize,
		HoursPerPerson:     model.HoursPerPerson,
		ResponsibleUserIDs: model.ResponsibleUserIDs,
		Status:             vo.PlanStatus(model.Status),
		GeneratedCount:     model.GeneratedCount,
	})
}

func (m *maintenancePlanMapper) ToEntities(list []*models.MaintenancePlanModel) ([]*maintenance.Plan, error) {
	return mapper.MapSliceWithError(list, m.ToEntity)
}

func (m *maintenancePlanMapper) ToModel(plan *maintenance.Plan) *models.MaintenancePlanModel {
	return &models.MaintenancePlanModel{
		ID:                 plan.ID(),
		TenantID:           plan.TenantID(),
		Code:               plan.Code(),
		Description:        plan.Description(),
		EquipmentID:        plan.EquipmentID(),
		RecurrenceLabel:    plan.RecurrenceLabel(),
		StartDate:          biztime.ToMillisPtr(plan.StartDate()),
		EndDate:            biztime.ToMillisPtr(plan.EndDate()),
		CrewSize:           plan.CrewSize(),
		HoursPerPerson:     plan.HoursPerPerson(),
		ResponsibleUserIDs: plan.ResponsibleUserIDs(),
		Status:             plan.Status().String(),
		GeneratedCount:     plan.GeneratedCount(),
	}
}

func (m *maintenancePlanMapper) ActivityToEntity(model *models.MaintenancePlanActivityModel) *maintenance.PlanActivity {
	return &maintenance.PlanActivity{
		ID:          model.ID,
		PlanID:      model.PlanID,
		Order:       model.SortOrder,
		Description: model.Description,
	}
}
