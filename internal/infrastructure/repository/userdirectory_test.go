package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/domain/maintenance"
	"cmms/internal/infrastructure/persistence/models"
)

func TestUserDirectory_DisplayName(t *testing.T) {
	gdb := setupTestDB(t)
	dir := NewUserDirectory(gdb)
	ctx := context.Background()

	require.NoError(t, gdb.Create(&[]*models.UserModel{
		{ID: 7, Name: " Ana Souza ", Email: "ana@example.com"},
		{ID: 8, Name: "", Email: "tecnico@example.com"},
	}).Error)

	name, err := dir.DisplayName(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", name)

	name, err = dir.DisplayName(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "tecnico@example.com", name)

	_, err = dir.DisplayName(ctx, 9)
	assert.ErrorIs(t, err, maintenance.ErrUserNotFound)
}
