package bootstrap

import (
	"fmt"

	"cmms/internal/infrastructure/config"
	"cmms/internal/infrastructure/database"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

// InitRuntime loads configuration for env and initializes the process-wide
// logger, business timezone and database connection. Callers close the
// database with database.Close.
func InitRuntime(env string) (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	// Occurrence dates and "today" are computed in this zone.
	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, log, nil
}
