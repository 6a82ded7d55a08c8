package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cmms/internal/domain/maintenance"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/db"
)

// UserDirectory resolves display names from the users table.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// DisplayName returns the user's name, or the email when no name is set.
func (r *UserDirectory) DisplayName(ctx context.Context, userID uint) (string, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var user models.UserModel
	if err := tx.Select("id", "name", "email").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", maintenance.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if name := strings.TrimSpace(user.Name); name != "" {
		return name, nil
	}
	return strings.TrimSpace(user.Email), nil
}
