package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/application/preventive/usecases"
	"cmms/internal/shared/biztime"
	sharedConfig "cmms/internal/shared/config"
	"cmms/internal/shared/logger"
)

type fakeGenerator struct {
	mu       sync.Mutex
	triggers []dto.Trigger
	fn       func(ctx context.Context, cmd usecases.GenerateAllCommand) (*dto.GenerationResult, error)
}

func (g *fakeGenerator) Execute(ctx context.Context, cmd usecases.GenerateAllCommand) (*dto.GenerationResult, error) {
	g.mu.Lock()
	g.triggers = append(g.triggers, cmd.Trigger)
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(ctx, cmd)
	}
	return &dto.GenerationResult{RunID: "run", Trigger: cmd.Trigger, State: dto.RunStateCompleted, CreatedCount: 2}, nil
}

func (g *fakeGenerator) calls() []dto.Trigger {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]dto.Trigger(nil), g.triggers...)
}

type fakePending struct {
	total int
	err   error
	calls int
}

func (p *fakePending) Execute(context.Context) (*dto.PendingOccurrencesResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &dto.PendingOccurrencesResult{TotalPending: p.total}, nil
}

// localTime builds a wall-clock time in the business timezone.
func localTime(day, hour, minute int) time.Time {
	return time.Date(2025, time.October, day, hour, minute, 0, 0, biztime.Location())
}

func testConfig() sharedConfig.SchedulerConfig {
	return sharedConfig.SchedulerConfig{
		Enabled:             true,
		PollIntervalSeconds: 60,
		GenerationTimes:     []string{"06:00", "18:00"},
		ProbeTimes:          []string{"08:00"},
		GuardRailSpec:       "*/30 8-18 * * 1-5",
		BacklogThreshold:    5,
		MinIntervalMinutes:  5,
		RunTimeoutMinutes:   30,
		HistorySize:         10,
	}
}

func newTestScheduler(t *testing.T, cfg sharedConfig.SchedulerConfig, start time.Time) (*GenerationScheduler, *fakeGenerator, *fakePending) {
	t.Helper()
	gen := &fakeGenerator{}
	pending := &fakePending{}
	s, err := NewGenerationScheduler(cfg, gen, pending, biztime.NewManualClock(start), logger.NewNopLogger())
	require.NoError(t, err)
	return s, gen, pending
}

func jobByName(status dto.SchedulerStatus, name string) *dto.ScheduledJob {
	for i := range status.Jobs {
		if status.Jobs[i].Name == name {
			return &status.Jobs[i]
		}
	}
	return nil
}

func TestNewGenerationScheduler_InvalidTimetable(t *testing.T) {
	clock := biztime.NewManualClock(localTime(6, 5, 0))

	cfg := testConfig()
	cfg.GenerationTimes = []string{"6h"}
	_, err := NewGenerationScheduler(cfg, &fakeGenerator{}, &fakePending{}, clock, logger.NewNopLogger())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.GuardRailSpec = "every half hour"
	_, err = NewGenerationScheduler(cfg, &fakeGenerator{}, &fakePending{}, clock, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestStatus_ListsNextFireTimes(t *testing.T) {
	// Monday 05:00.
	s, _, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))

	status := s.Status()
	assert.False(t, status.Running)
	assert.Nil(t, status.LastExecutionTime)
	require.Len(t, status.Jobs, 4)

	assert.True(t, jobByName(status, "generation@06:00").NextFire.Equal(localTime(6, 6, 0)))
	assert.True(t, jobByName(status, "generation@18:00").NextFire.Equal(localTime(6, 18, 0)))
	assert.True(t, jobByName(status, "probe@08:00").NextFire.Equal(localTime(6, 8, 0)))
	assert.True(t, jobByName(status, "guard-rail").NextFire.Equal(localTime(6, 8, 0)))
}

func TestTick_FiresGenerationWhenDue(t *testing.T) {
	s, gen, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))
	ctx := context.Background()

	s.tick(ctx, localTime(6, 5, 59))
	assert.Empty(t, gen.calls())

	s.tick(ctx, localTime(6, 6, 0))
	assert.Equal(t, []dto.Trigger{dto.TriggerScheduled}, gen.calls())

	// Same minute again does not refire.
	s.tick(ctx, localTime(6, 6, 0))
	assert.Len(t, gen.calls(), 1)

	status := s.Status()
	assert.Equal(t, 1, status.ExecutionCount)
	require.NotNil(t, status.LastExecutionTime)
	assert.True(t, status.LastExecutionTime.Equal(localTime(6, 6, 0)))
	assert.True(t, jobByName(status, "generation@06:00").NextFire.Equal(localTime(7, 6, 0)))

	history := s.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, OutcomeCompleted, history[0].Outcome)
	assert.Equal(t, 2, history[0].CreatedCount)
}

func TestTick_MinIntervalSkipsTooRecentRuns(t *testing.T) {
	cfg := testConfig()
	cfg.GenerationTimes = []string{"06:00", "06:02", "06:10"}
	s, gen, _ := newTestScheduler(t, cfg, localTime(6, 5, 0))
	ctx := context.Background()

	s.tick(ctx, localTime(6, 6, 0))
	s.tick(ctx, localTime(6, 6, 2))
	s.tick(ctx, localTime(6, 6, 10))

	assert.Len(t, gen.calls(), 2)
	history := s.History(0)
	require.Len(t, history, 3)
	assert.Equal(t, OutcomeCompleted, history[0].Outcome)
	assert.Equal(t, OutcomeTooRecent, history[1].Outcome)
	assert.Equal(t, 2, s.Status().ExecutionCount)
}

func TestTick_RunInProgressIsNoOp(t *testing.T) {
	s, gen, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))
	gen.fn = func(context.Context, usecases.GenerateAllCommand) (*dto.GenerationResult, error) {
		return nil, usecases.ErrGenerationInProgress
	}

	s.tick(context.Background(), localTime(6, 6, 0))

	status := s.Status()
	assert.Zero(t, status.ExecutionCount)
	assert.Nil(t, status.LastExecutionTime)
	history := s.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, OutcomeInProgress, history[0].Outcome)
}

func TestTick_FailedRunIsRecorded(t *testing.T) {
	s, gen, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))
	gen.fn = func(_ context.Context, cmd usecases.GenerateAllCommand) (*dto.GenerationResult, error) {
		return &dto.GenerationResult{RunID: "r1", Trigger: cmd.Trigger, State: dto.RunStateFailed, Error: "db down"}, nil
	}

	s.tick(context.Background(), localTime(6, 6, 0))

	history := s.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, OutcomeFailed, history[0].Outcome)
	assert.Equal(t, "db down", history[0].Message)
	assert.Equal(t, 1, s.Status().ExecutionCount)
}

func TestTick_GuardRail(t *testing.T) {
	cfg := testConfig()
	cfg.GenerationTimes = nil
	cfg.ProbeTimes = nil

	t.Run("below threshold", func(t *testing.T) {
		s, gen, pending := newTestScheduler(t, cfg, localTime(6, 8, 10))
		pending.total = 5

		s.tick(context.Background(), localTime(6, 8, 30))

		assert.Empty(t, gen.calls())
		assert.Equal(t, 1, pending.calls)
		history := s.History(0)
		require.Len(t, history, 1)
		assert.Equal(t, OutcomeBelowLimit, history[0].Outcome)
		assert.Equal(t, 5, history[0].Pending)
	})

	t.Run("above threshold generates", func(t *testing.T) {
		s, gen, pending := newTestScheduler(t, cfg, localTime(6, 8, 10))
		pending.total = 6

		s.tick(context.Background(), localTime(6, 8, 30))

		assert.Equal(t, []dto.Trigger{dto.TriggerGuardRail}, gen.calls())
		history := s.History(0)
		require.Len(t, history, 1)
		assert.Equal(t, OutcomeCompleted, history[0].Outcome)
		assert.Equal(t, 6, history[0].Pending)
	})

	t.Run("weekend does not fire", func(t *testing.T) {
		// Saturday 2025-10-11.
		s, _, pending := newTestScheduler(t, cfg, localTime(11, 8, 10))
		s.tick(context.Background(), localTime(11, 12, 0))
		assert.Zero(t, pending.calls)
		assert.True(t, jobByName(s.Status(), "guard-rail").NextFire.Equal(localTime(13, 8, 0)))
	})
}

func TestTick_ProbeOnlyLogs(t *testing.T) {
	cfg := testConfig()
	cfg.GuardRailSpec = ""
	s, gen, pending := newTestScheduler(t, cfg, localTime(6, 7, 0))
	pending.total = 12

	s.tick(context.Background(), localTime(6, 8, 0))

	assert.Empty(t, gen.calls())
	history := s.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, OutcomeProbed, history[0].Outcome)
	assert.Equal(t, 12, history[0].Pending)
}

func TestTick_RecoversFromPanic(t *testing.T) {
	cfg := testConfig()
	cfg.GenerationTimes = []string{"06:00", "18:00"}
	s, gen, _ := newTestScheduler(t, cfg, localTime(6, 5, 0))
	gen.fn = func(context.Context, usecases.GenerateAllCommand) (*dto.GenerationResult, error) {
		panic("boom")
	}

	require.NotPanics(t, func() { s.tick(context.Background(), localTime(6, 6, 0)) })

	status := s.Status()
	assert.False(t, status.Executing)
	history := s.History(0)
	require.Len(t, history, 1)
	assert.Equal(t, OutcomePanicked, history[0].Outcome)

	gen.fn = nil
	s.tick(context.Background(), localTime(6, 18, 0))
	assert.Len(t, gen.calls(), 2)
}

func TestHistory_BoundedNewestFirst(t *testing.T) {
	cfg := testConfig()
	cfg.HistorySize = 3
	cfg.GenerationTimes = nil
	cfg.GuardRailSpec = ""
	cfg.ProbeTimes = []string{"08:00"}
	s, _, _ := newTestScheduler(t, cfg, localTime(1, 7, 0))

	for day := 1; day <= 5; day++ {
		s.tick(context.Background(), localTime(day, 8, 0))
	}

	history := s.History(0)
	require.Len(t, history, 3)
	assert.True(t, history[0].FiredAt.Equal(localTime(5, 8, 0)))
	assert.True(t, history[2].FiredAt.Equal(localTime(3, 8, 0)))

	assert.Len(t, s.History(2), 2)
}

func TestStartStop(t *testing.T) {
	s, _, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))

	s.Start(context.Background())
	assert.True(t, s.Status().Running)

	s.Stop()
	assert.False(t, s.Status().Running)

	// Stop is idempotent.
	s.Stop()
}

func TestStartStop_RestartFiresJobs(t *testing.T) {
	cfg := testConfig()
	cfg.PollIntervalSeconds = 1
	s, gen, _ := newTestScheduler(t, cfg, localTime(6, 5, 0))
	clock := s.clock.(*biztime.ManualClock)

	s.Start(context.Background())
	s.Stop()
	require.False(t, s.Status().Running)

	s.Start(context.Background())
	defer s.Stop()
	assert.True(t, s.Status().Running)

	clock.Set(localTime(6, 6, 0))
	require.Eventually(t, func() bool {
		return len(gen.calls()) == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestStart_ContextCancellationClearsRunning(t *testing.T) {
	s, _, _ := newTestScheduler(t, testConfig(), localTime(6, 5, 0))
	ctx, cancel := context.WithCancel(context.Background())

	s.Start(ctx)
	assert.True(t, s.Status().Running)

	cancel()
	require.Eventually(t, func() bool {
		return !s.Status().Running
	}, time.Second, 10*time.Millisecond)

	// It can be started again after the loop exited on its own.
	s.Start(context.Background())
	assert.True(t, s.Status().Running)
	s.Stop()
	assert.False(t, s.Status().Running)
}
