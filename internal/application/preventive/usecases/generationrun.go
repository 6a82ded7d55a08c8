package usecases

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/goroutine"
	"cmms/internal/shared/logger"
)

// ErrGenerationInProgress is returned when a run is requested while another
// one is still running in this process.
var ErrGenerationInProgress = errors.New("a generation run is already in progress")

// GenerationRunner owns the single-flight run state machine:
// idle -> running -> completed | failed.
type GenerationRunner struct {
	mu      sync.Mutex
	state   dto.RunState
	current *dto.GenerationResult
	last    *dto.GenerationResult

	store    RunLogStore
	notifier RunNotifier
	clock    biztime.Clock
	newID    func() string
	logger   logger.Interface
}

func NewGenerationRunner(clock biztime.Clock, logger logger.Interface) *GenerationRunner {
	return &GenerationRunner{
		state:  dto.RunStateIdle,
		clock:  clock,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// SetRunLogStore sets where finished runs are persisted (optional).
func (r *GenerationRunner) SetRunLogStore(store RunLogStore) {
	r.store = store
}

// SetRunNotifier sets who is told about failed automatic runs (optional).
func (r *GenerationRunner) SetRunNotifier(notifier RunNotifier) {
	r.notifier = notifier
}

func (r *GenerationRunner) State() dto.RunState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// LastRun returns the most recent finished run, or nil.
func (r *GenerationRunner) LastRun() *dto.GenerationResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run executes body as one generation run. It returns
// ErrGenerationInProgress without calling body when a run is active. A body
// error or panic marks the run failed; the partial result is still returned
// with a nil error.
func (r *GenerationRunner) Run(ctx context.Context, trigger dto.Trigger, body func(ctx context.Context, rec *runRecorder) error) (*dto.GenerationResult, error) {
	result, err := r.begin(trigger)
	if err != nil {
		return nil, err
	}

	rec := newRunRecorder(result, r.clock, r.logger)
	rec.info("", "generation run started (%s)", trigger)

	var runErr error
	if panicErr := goroutine.Recover(r.logger, "generation-run", func() {
		runErr = body(ctx, rec)
	}); panicErr != nil {
		runErr = panicErr
	}

	r.finish(ctx, rec, runErr)
	return result, nil
}

func (r *GenerationRunner) begin(trigger dto.Trigger) (*dto.GenerationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == dto.RunStateRunning {
		r.logger.Warnw("generation run rejected, another run is in progress",
			"trigger", trigger,
			"running_run_id", r.current.RunID,
		)
		return nil, ErrGenerationInProgress
	}

	result := &dto.GenerationResult{
		RunID:        r.newID(),
		Trigger:      trigger,
		State:        dto.RunStateRunning,
		CreatedItems: []dto.CreatedItem{},
		OperationLog: []dto.LogEntry{},
		StartedAt:    r.clock.Now().UTC(),
	}
	r.state = dto.RunStateRunning
	r.current = result
	return result, nil
}

func (r *GenerationRunner) finish(ctx context.Context, rec *runRecorder, runErr error) {
	result := rec.result
	if runErr != nil {
		result.State = dto.RunStateFailed
		result.Error = runErr.Error()
		rec.append(dto.LogError, "", "generation run failed: %v", runErr)
	} else {
		result.State = dto.RunStateCompleted
		rec.info("", "generation run finished: %d plans, %d created, %d skipped, %d errors",
			result.PlansConsidered, result.CreatedCount, result.SkippedCount, result.ErrorCount)
	}
	result.FinishedAt = r.clock.Now().UTC()

	r.mu.Lock()
	r.state = result.State
	r.current = nil
	r.last = result
	r.mu.Unlock()

	// The run's own context may already be cancelled; bookkeeping still runs.
	bgCtx := context.WithoutCancel(ctx)
	if r.store != nil {
		if err := r.store.Save(bgCtx, result); err != nil {
			r.logger.Warnw("failed to save generation run log", "run_id", result.RunID, "error", err)
		}
	}
	if r.notifier != nil && result.Trigger.IsAutomatic() && (result.Failed() || result.ErrorCount > 0) {
		if err := r.notifier.NotifyRun(bgCtx, result); err != nil {
			r.logger.Warnw("failed to send generation run report", "run_id", result.RunID, "error", err)
		}
	}
}
