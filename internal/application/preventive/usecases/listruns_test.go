package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

func TestListRuns(t *testing.T) {
	f := newFixture(biztime.Date(2025, time.October, 3))
	for i := 0; i < 3; i++ {
		_, err := f.all.Execute(context.Background(), GenerateAllCommand{})
		require.NoError(t, err)
	}

	uc := NewListRunsUseCase(f.store, f.runner, logger.NewNopLogger())
	runs, err := uc.Execute(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, f.store.runs[2].RunID, runs[0].RunID, "newest first")

	runs, err = uc.Execute(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestListRuns_WithoutStore(t *testing.T) {
	f := newFixture(biztime.Date(2025, time.October, 3))
	uc := NewListRunsUseCase(nil, f.runner, logger.NewNopLogger())

	runs, err := uc.Execute(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	last, err := f.all.Execute(context.Background(), GenerateAllCommand{})
	require.NoError(t, err)
	runs, err = uc.Execute(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, last.RunID, runs[0].RunID)
}
