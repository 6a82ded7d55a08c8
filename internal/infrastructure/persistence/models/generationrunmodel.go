package models

import "gorm.io/datatypes"

// GenerationRunModel is the audit record of one generation run.
type GenerationRunModel struct {
	ID              uint           `gorm:"primaryKey"`
	RunID           string         `gorm:"uniqueIndex;size:36;not null"`
	TriggerType     string         `gorm:"column:trigger_type;size:20;not null"`
	State           string         `gorm:"size:20;not null;index"`
	PlanCode        string         `gorm:"size:50;not null;default:''"`
	PlansConsidered int            `gorm:"not null;default:0"`
	PlansProcessed  int            `gorm:"not null;default:0"`
	CreatedCount    int            `gorm:"not null;default:0"`
	SkippedCount    int            `gorm:"not null;default:0"`
	ErrorCount      int            `gorm:"not null;default:0"`
	CreatedItems    datatypes.JSON `gorm:"type:json"`
	OperationLog    datatypes.JSON `gorm:"type:json"`
	ErrorMessage    string         `gorm:"type:text"`
	StartedAt       int64          `gorm:"not null;index"`
	FinishedAt      int64          `gorm:"not null"`
}

func (GenerationRunModel) TableName() string {
	return "generation_runs"
}
