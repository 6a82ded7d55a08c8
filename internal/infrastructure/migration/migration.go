package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cmms/internal/shared/logger"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	models   []interface{}
	logger   logger.Interface
}

// NewManager picks gorm AutoMigrate for development, including the
// reference tables a standalone install needs, and the versioned goose
// scripts everywhere else.
func NewManager(environment, driver string, log logger.Interface) (*Manager, error) {
	if strings.ToLower(environment) == EnvDevelopment {
		all := append(AutoMigrateModels(), ReferenceModels()...)
		return &Manager{
			strategy: NewGormAutoMigrateStrategy(log),
			models:   all,
			logger:   log.With("component", "migration.manager"),
		}, nil
	}

	strategy, err := NewGooseStrategy(driver, log)
	if err != nil {
		return nil, err
	}
	return NewManagerWithStrategy(strategy, log), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		models:   AutoMigrateModels(),
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models_count", len(m.models))

	if err := m.strategy.Migrate(db, m.models...); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully",
		"strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// GetStrategyInfo returns information about the current strategy
func (m *Manager) GetStrategyInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":        m.strategy.GetName(),
		"description": getStrategyDescription(m.strategy.GetName()),
	}
}

func getStrategyDescription(strategyName string) string {
	switch strategyName {
	case "gorm_auto_migrate":
		return "GORM AutoMigrate - schema derived from the persistence models"
	case "goose":
		return "goose - version-controlled SQL migration scripts"
	default:
		return "Unknown migration strategy"
	}
}
