package migration

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

type gooseRun struct {
	db *sql.DB
}

// with configures the goose globals for this strategy and runs fn while
// holding the lock.
func (s *GooseStrategy) with(db *gorm.DB, fn func(run gooseRun) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scriptsFS)
	goose.SetLogger(gooseLogger{s.logger})
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(gooseRun{db: sqlDB})
}

// gooseLogger routes goose output into the structured logger.
type gooseLogger struct {
	logger interface {
		Info(msg string, args ...any)
		Error(msg string, args ...any)
	}
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
