package models

import "gorm.io/datatypes"

// MaintenancePlanModel is the persistence shape of a preventive maintenance
// plan. Dates are UTC midnight in unix milliseconds.
type MaintenancePlanModel struct {
	ID                 uint                      `gorm:"primaryKey"`
	TenantID           uint                      `gorm:"not null;default:0;index"`
	Code               string                    `gorm:"uniqueIndex;size:50;not null"`
	Description        string                    `gorm:"size:500;not null;default:''"`
	EquipmentID        uint                      `gorm:"not null;index"`
	RecurrenceLabel    string                    `gorm:"size:100;not null;default:''"`
	StartDate          *int64                    `gorm:"index"`
	EndDate            *int64
	CrewSize           int                       `gorm:"not null;default:0"`
	HoursPerPerson     float64                   `gorm:"not null;default:0"`
	ResponsibleUserIDs datatypes.JSONSlice[uint] `gorm:"type:json"`
	Status             string                    `gorm:"size:20;not null;default:active;index"`
	GeneratedCount     int                       `gorm:"not null;default:0"`
	CreatedAt          int64                     `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt          int64                     `gorm:"autoUpdateTime:milli;not null"`
}

func (MaintenancePlanModel) TableName() string {
	return "maintenance_plans"
}

// MaintenancePlanActivityModel is one checklist item of a plan.
type MaintenancePlanActivityModel struct {
	ID          uint   `gorm:"primaryKey"`
	PlanID      uint   `gorm:"not null;index"`
	SortOrder   int    `gorm:"not null;default:0"`
	Description string `gorm:"size:500;not null"`
}

func (MaintenancePlanActivityModel) TableName() string {
	return "maintenance_plan_activities"
}
