package mappers

import (
	"cmms/internal/domain/maintenance"
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/mapper"
)

// WorkOrderMapper converts between work orders and their persistence models.
type WorkOrderMapper interface {
	ToModel(wo *maintenance.WorkOrder) *models.WorkOrderModel
	ActivitiesToModels(wo *maintenance.WorkOrder) []*models.WorkOrderActivityModel
	ToEntity(model *models.WorkOrderModel, activities []*models.WorkOrderActivityModel) (*maintenance.WorkOrder, error)
}

type workOrderMapper struct{}

func NewWorkOrderMapper() WorkOrderMapper {
	return &workOrderMapper{}
}

func (m *workOrderMapper) ToModel(wo *maintenance.WorkOrder) *models.WorkOrderModel {
	model := &models.WorkOrderModel{
		ID:              wo.ID(),
		TenantID:        wo.TenantID(),
		Description:     wo.Description(),
		PlanID:          wo.PlanID(),
		EquipmentID:     wo.EquipmentID(),
		Category:        wo.Category().String(),
		OpenedDate:      biztime.ToMillis(wo.OpenedDate()),
		ScheduledDate:   biztime.ToMillisPtr(wo.ScheduledDate()),
		RecurrenceLabel: wo.RecurrenceLabel(),
		SequenceNumber:  wo.SequenceNumber(),
		Status:          wo.Status().String(),
		AssigneeID:      wo.AssigneeID(),
		AssigneeName:    wo.AssigneeName(),
		CrewSize:        wo.CrewSize(),
		HoursPerPerson:  wo.HoursPerPerson(),
		PersonHours:     wo.PersonHours(),
		LocationID:      wo.LocationID(),
		SiteID:          wo.SiteID(),
		ZoneID:          wo.ZoneID(),
	}
	if !wo.CreatedAt().IsZero() {
		model.CreatedAt = wo.CreatedAt().UnixMilli()
	}
	return model
}

func (m *workOrderMapper) ActivitiesToModels(wo *maintenance.WorkOrder) []*models.WorkOrderActivityModel {
	out := make([]*models.WorkOrderActivityModel, 0, len(wo.Activities()))
	for _, a := range wo.Activities() {
		out = append(out, &models.WorkOrderActivityModel{
			ID:           a.ID,
			WorkOrderID:  wo.ID(),
			SortOrder:    a.Order,
			Description:  a.Description,
			ReviewStatus: a.ReviewStatus.String(),
		})
	}
	return out
}

func (m *workOrderMapper) ToEntity(model *models.WorkOrderModel, activities []*models.WorkOrderActivityModel) (*maintenance.WorkOrder, error) {
	if model == nil {
		return nil, nil
	}

	// Statuses written by other tools load unchanged; callers only compare them.
	status := vo.WorkOrderStatus(model.Status)

	items := mapper.MapSlice(activities, func(a *models.WorkOrderActivityModel) *maintenance.WorkOrderActivity {
		return &maintenance.WorkOrderActivity{
			ID:           a.ID,
			WorkOrderID:  a.WorkOrderID,
			Order:        a.SortOrder,
			Description:  a.Description,
			ReviewStatus: vo.ReviewStatus(a.ReviewStatus),
		}
	})

	return maintenance.ReconstructWorkOrder(maintenance.WorkOrderParams{
		ID:              model.ID,
		TenantID:        model.TenantID,
		Description:     model.Description,
		PlanID:          model.PlanID,
		EquipmentID:     model.EquipmentID,
		Category:        vo.WorkOrderCategory(model.Category),
		OpenedDate:      biztime.FromMillis(model.OpenedDate),
		ScheduledDate:   biztime.FromMillisPtr(model.ScheduledDate),
		RecurrenceLabel: model.RecurrenceLabel,
		SequenceNumber:  model.SequenceNumber,
		Status:          status,
		AssigneeID:      model.AssigneeID,
		AssigneeName:    model.AssigneeName,
		CrewSize:        model.CrewSize,
		HoursPerPerson:  model.HoursPerPerson,
		PersonHours:     model.PersonHours,
		LocationID:      model.LocationID,
		SiteID:          model.SiteID,
		ZoneID:          model.ZoneID,
		Activities:      items,
		CreatedAt:       biztime.FromMillis(model.CreatedAt),
	})
}
