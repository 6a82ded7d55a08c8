package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cmms/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.MaintenancePlanModel{},
		&models.MaintenancePlanActivityModel{},
		&models.WorkOrderModel{},
		&models.WorkOrderActivityModel{},
		&models.EquipmentModel{},
		&models.LocationModel{},
		&models.UserModel{},
		&models.GenerationRunModel{},
	))
	return db
}

func uintPtr(v uint) *uint { return &v }

func int64Ptr(v int64) *int64 { return &v }
