package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"cmms/internal/shared/logger"
)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator creates goose migration files in the source tree. Both dialect
// directories get a script so they stay in step.
type Generator struct {
	scriptsPath string
	now         func() time.Time
	logger      logger.Interface
}

// NewGenerator expects the path of the scripts directory that holds the
// mysql and sqlite subdirectories.
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		now:         time.Now,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes <timestamp>_<name>.sql for every dialect and
// returns the created paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !migrationNamePattern.MatchString(name) {
		return nil, fmt.Errorf("migration name %q must be lower snake case", name)
	}

	now := g.now()
	fileName := fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), name)

	var created []string
	for _, dialect := range []string{"mysql", "sqlite"} {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			return created, fmt.Errorf("migration %s already exists", path)
		}
		if err := os.WriteFile(path, []byte(migrationTemplate(name, dialect, now)), 0o644); err != nil {
			return created, fmt.Errorf("failed to write migration file: %w", err)
		}
		created = append(created, path)
	}

	g.logger.Infow("migration files created successfully", "files", created)
	return created, nil
}

func migrationTemplate(name, dialect string, now time.Time) string {
	return fmt.Sprintf(`-- Migration: %s (%s)
-- Created: %s

-- +goose Up

-- +goose Down
`, name, dialect, now.UTC().Format("2006-01-02 15:04:05"))
}
