package models

// WorkOrderModel is the persistence shape of a work order. There is no
// unique key on (plan_id, sequence_number) or (plan_id, scheduled_date):
// legacy rows already violate both.
type WorkOrderModel struct {
	ID              uint    `gorm:"primaryKey"`
	TenantID        uint    `gorm:"not null;default:0;index"`
	Description     string  `gorm:"type:text;not null"`
	PlanID          *uint   `gorm:"index:idx_work_orders_plan_seq,priority:1;index:idx_work_orders_plan_scheduled,priority:1"`
	EquipmentID     uint    `gorm:"not null;index:idx_work_orders_equipment_opened,priority:1"`
	Category        string  `gorm:"size:20;not null;default:corrective"`
	OpenedDate      int64   `gorm:"not null;index:idx_work_orders_equipment_opened,priority:2"`
	ScheduledDate   *int64  `gorm:"index:idx_work_orders_plan_scheduled,priority:2"`
	RecurrenceLabel string  `gorm:"size:100;not null;default:''"`
	SequenceNumber  int     `gorm:"not null;default:0;index:idx_work_orders_plan_seq,priority:2"`
	Status          string  `gorm:"size:20;not null;index"`
	AssigneeID      *uint   `gorm:"index"`
	AssigneeName    string  `gorm:"size:150;not null;default:''"`
	CrewSize        int     `gorm:"not null;default:1"`
	HoursPerPerson  float64 `gorm:"not null;default:1"`
	PersonHours     float64 `gorm:"not null;default:1"`
	LocationID      uint    `gorm:"not null;default:0"`
	SiteID          uint    `gorm:"not null;default:0"`
	ZoneID          uint    `gorm:"not null;default:0"`
	CreatedAt       int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64   `gorm:"autoUpdateTime:milli;not null"`
}

func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// WorkOrderActivityModel is a checklist item copied onto a work order.
type WorkOrderActivityModel struct {
	ID           uint   `gorm:"primaryKey"`
	WorkOrderID  uint   `gorm:"not null;index"`
	SortOrder    int    `gorm:"not null;default:0"`
	Description  string `gorm:"size:500;not null"`
	ReviewStatus string `gorm:"size:20;not null;default:pending"`
}

func (WorkOrderActivityModel) TableName() string {
	return "work_order_activities"
}
