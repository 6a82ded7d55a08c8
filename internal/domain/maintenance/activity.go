package maintenance

import vo "cmms/internal/domain/maintenance/valueobjects"

// PlanActivity is one item of a plan's checklist template.
type PlanActivity struct {
	ID          uint
	PlanID      uint
	Order       int
	Description string
}

// WorkOrderActivity is a checklist item copied onto a work order so the
// execution outcome can be recorded without touching the plan template.
type WorkOrderActivity struct {
	ID           uint
	WorkOrderID  uint
	Order        int
	Description  string
	ReviewStatus vo.ReviewStatus
}

// ActivitiesFromTemplate copies a plan checklist into pending work-order
// activities, preserving order.
func ActivitiesFromTemplate(template []*PlanActivity) []*WorkOrderActivity {
	out := make([]*WorkOrderActivity, 0, len(template))
	for _, a := range template {
		out = append(out, &WorkOrderActivity{
			Order:        a.Order,
			Description:  a.Description,
			ReviewStatus: vo.ReviewPending,
		})
	}
	return out
}
