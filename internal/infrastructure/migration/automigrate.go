package migration

import (
	"cmms/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the tables the generator owns.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.MaintenancePlanModel{},
		&models.MaintenancePlanActivityModel{},
		&models.WorkOrderModel{},
		&models.WorkOrderActivityModel{},
		&models.GenerationRunModel{},
	}
}

// ReferenceModels are owned by the asset and identity subsystems. They are
// only auto-migrated for standalone development databases.
func ReferenceModels() []interface{} {
	return []interface{}{
		&models.EquipmentModel{},
		&models.LocationModel{},
		&models.UserModel{},
	}
}
