package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/application/preventive/usecases"
	"cmms/internal/shared/biztime"
	sharedConfig "cmms/internal/shared/config"
	"cmms/internal/shared/goroutine"
	"cmms/internal/shared/logger"
)

const (
	JobKindGeneration = "generation"
	JobKindProbe      = "probe"
	JobKindGuardRail  = "guard_rail"
)

const (
	OutcomeCompleted  = "completed"
	OutcomeFailed     = "failed"
	OutcomeInProgress = "in_progress"
	OutcomeTooRecent  = "too_recent"
	OutcomeBelowLimit = "below_threshold"
	OutcomeProbed     = "probed"
	OutcomePanicked   = "panicked"
)

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Generator is the GenerateAll entry point.
type Generator interface {
	Execute(ctx context.Context, cmd usecases.GenerateAllCommand) (*dto.GenerationResult, error)
}

// PendingChecker is the CheckPendingOccurrences entry point.
type PendingChecker interface {
	Execute(ctx context.Context) (*dto.PendingOccurrencesResult, error)
}

type job struct {
	name     string
	kind     string
	spec     string
	schedule cron.Schedule
	next     time.Time
}

// GenerationScheduler fires preventive generation on a cron timetable. A
// cooperative poll loop compares the clock with each job's next fire time,
// so the whole timetable runs on one goroutine and never overlaps itself.
// Generation itself is single-flight; a trigger that collides with a manual
// run is a no-op.
type GenerationScheduler struct {
	generator Generator
	pending   PendingChecker
	clock     biztime.Clock
	logger    logger.Interface

	jobs             []*job
	pollInterval     time.Duration
	minInterval      time.Duration
	runTimeout       time.Duration
	backlogThreshold int
	historySize      int

	mu             sync.Mutex
	running        bool
	executing      bool
	lastExecution  time.Time
	executionCount int
	history        []dto.SchedulerExecution

	// stopChan belongs to the current Start; nil while stopped.
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewGenerationScheduler parses the configured timetable. Times are HH:MM
// in the business timezone; the guard rail takes a 5-field cron spec.
func NewGenerationScheduler(
	cfg sharedConfig.SchedulerConfig,
	generator Generator,
	pending PendingChecker,
	clock biztime.Clock,
	logger logger.Interface,
) (*GenerationScheduler, error) {
	s := &GenerationScheduler{
		generator:        generator,
		pending:          pending,
		clock:            clock,
		logger:           logger,
		pollInterval:     time.Duration(cfg.PollIntervalSeconds) * time.Second,
		minInterval:      time.Duration(cfg.MinIntervalMinutes) * time.Minute,
		runTimeout:       time.Duration(cfg.RunTimeoutMinutes) * time.Minute,
		backlogThreshold: cfg.BacklogThreshold,
		historySize:      cfg.HistorySize,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = time.Minute
	}
	if s.historySize <= 0 {
		s.historySize = 50
	}

	for _, at := range cfg.GenerationTimes {
		if err := s.addDaily("generation@"+at, JobKindGeneration, at); err != nil {
			return nil, err
		}
	}
	for _, at := range cfg.ProbeTimes {
		if err := s.addDaily("probe@"+at, JobKindProbe, at); err != nil {
			return nil, err
		}
	}
	if cfg.GuardRailSpec != "" {
		if err := s.addJob("guard-rail", JobKindGuardRail, cfg.GuardRailSpec); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *GenerationScheduler) addDaily(name, kind, at string) error {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return fmt.Errorf("invalid %s time %q, expected HH:MM", kind, at)
	}
	return s.addJob(name, kind, fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()))
}

func (s *GenerationScheduler) addJob(name, kind, spec string) error {
	schedule, err := specParser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.jobs = append(s.jobs, &job{
		name:     name,
		kind:     kind,
		spec:     spec,
		schedule: schedule,
		next:     schedule.Next(s.clock.Now().In(biztime.Location())),
	})
	return nil
}

// Start starts the poll loop. Runs it launches use a context detached from
// ctx so stopping never aborts a run mid-item. A stopped scheduler can be
// started again.
func (s *GenerationScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	// A loop that exited on ctx cancellation may still be unwinding.
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	stopChan := make(chan struct{})
	s.stopChan = stopChan
	s.running = true
	s.mu.Unlock()

	s.logger.Infow("starting generation scheduler",
		"poll_interval", s.pollInterval,
		"jobs", len(s.jobs),
	)

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx, runCtx, stopChan)
	}()
}

// Stop stops the scheduler gracefully, waiting for an in-flight run.
// Stopping a stopped scheduler is a no-op.
func (s *GenerationScheduler) Stop() {
	s.mu.Lock()
	stopChan := s.stopChan
	s.stopChan = nil
	s.mu.Unlock()

	if stopChan == nil {
		s.wg.Wait()
		return
	}

	s.logger.Infow("stopping generation scheduler")
	close(stopChan)
	s.wg.Wait()
	s.logger.Infow("generation scheduler stopped")
}

func (s *GenerationScheduler) runLoop(ctx, runCtx context.Context, stopChan chan struct{}) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	defer func() {
		s.mu.Lock()
		s.running = false
		if s.stopChan == stopChan {
			s.stopChan = nil
		}
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("generation scheduler stopped due to context cancellation")
			return
		case <-stopChan:
			return
		case <-ticker.C:
			s.tick(runCtx, s.clock.Now())
		}
	}
}

// tick fires every job that is due at now, in configuration order.
func (s *GenerationScheduler) tick(ctx context.Context, now time.Time) {
	local := now.In(biztime.Location())

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if local.Before(j.next) {
			continue
		}
		j.next = j.schedule.Next(local)
		due = append(due, j)
	}
	s.mu.Unlock()

	for _, j := range due {
		if err := goroutine.Recover(s.logger, "scheduler-"+j.name, func() {
			s.fire(ctx, j, now)
		}); err != nil {
			s.setExecuting(false)
			s.record(dto.SchedulerExecution{
				Job: j.name, Kind: j.kind, FiredAt: now,
				Outcome: OutcomePanicked, Message: err.Error(),
			})
		}
	}
}

func (s *GenerationScheduler) fire(ctx context.Context, j *job, now time.Time) {
	s.logger.Debugw("scheduler job due", "job", j.name, "kind", j.kind)

	switch j.kind {
	case JobKindGeneration:
		s.generate(ctx, j, now, dto.TriggerScheduled, 0)
	case JobKindProbe:
		s.probe(ctx, j, now)
	case JobKindGuardRail:
		s.guardRail(ctx, j, now)
	}
}

func (s *GenerationScheduler) probe(ctx context.Context, j *job, now time.Time) {
	result, err := s.checkPending(ctx)
	if err != nil {
		s.logger.Errorw("backlog probe failed", "job", j.name, "error", err)
		s.record(dto.SchedulerExecution{Job: j.name, Kind: j.kind, FiredAt: now, Outcome: OutcomeFailed, Message: err.Error()})
		return
	}

	if result.TotalPending > 0 {
		s.logger.Warnw("preventive backlog detected",
			"pending", result.TotalPending,
			"plans", len(result.Plans),
		)
	} else {
		s.logger.Infow("no preventive backlog")
	}
	s.record(dto.SchedulerExecution{Job: j.name, Kind: j.kind, FiredAt: now, Outcome: OutcomeProbed, Pending: result.TotalPending})
}

func (s *GenerationScheduler) guardRail(ctx context.Context, j *job, now time.Time) {
	result, err := s.checkPending(ctx)
	if err != nil {
		s.logger.Errorw("guard-rail check failed", "error", err)
		s.record(dto.SchedulerExecution{Job: j.name, Kind: j.kind, FiredAt: now, Outcome: OutcomeFailed, Message: err.Error()})
		return
	}

	if result.TotalPending <= s.backlogThreshold {
		s.logger.Debugw("guard-rail backlog below threshold",
			"pending", result.TotalPending,
			"threshold", s.backlogThreshold,
		)
		s.record(dto.SchedulerExecution{Job: j.name, Kind: j.kind, FiredAt: now, Outcome: OutcomeBelowLimit, Pending: result.TotalPending})
		return
	}

	s.logger.Warnw("guard-rail triggering generation",
		"pending", result.TotalPending,
		"threshold", s.backlogThreshold,
	)
	s.generate(ctx, j, now, dto.TriggerGuardRail, result.TotalPending)
}

func (s *GenerationScheduler) checkPending(ctx context.Context) (*dto.PendingOccurrencesResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.pending.Execute(ctx)
}

func (s *GenerationScheduler) generate(ctx context.Context, j *job, now time.Time, trigger dto.Trigger, pending int) {
	exec := dto.SchedulerExecution{Job: j.name, Kind: j.kind, FiredAt: now, Pending: pending}

	s.mu.Lock()
	last := s.lastExecution
	s.mu.Unlock()
	if !last.IsZero() && s.minInterval > 0 && now.Sub(last) < s.minInterval {
		s.logger.Infow("scheduled generation skipped, last run too recent",
			"job", j.name,
			"last_execution", last,
			"min_interval", s.minInterval,
		)
		exec.Outcome = OutcomeTooRecent
		s.record(exec)
		return
	}

	runCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.setExecuting(true)
	result, err := s.generator.Execute(runCtx, usecases.GenerateAllCommand{Trigger: trigger})
	s.setExecuting(false)

	if errors.Is(err, usecases.ErrGenerationInProgress) {
		s.logger.Infow("scheduled generation skipped, a run is already in progress", "job", j.name)
		exec.Outcome = OutcomeInProgress
		s.record(exec)
		return
	}
	if err != nil {
		s.logger.Errorw("scheduled generation failed", "job", j.name, "error", err)
		exec.Outcome = OutcomeFailed
		exec.Message = err.Error()
		s.record(exec)
		return
	}

	s.mu.Lock()
	s.lastExecution = now
	s.executionCount++
	s.mu.Unlock()

	exec.RunID = result.RunID
	exec.CreatedCount = result.CreatedCount
	exec.ErrorCount = result.ErrorCount
	exec.Outcome = OutcomeCompleted
	if result.Failed() {
		exec.Outcome = OutcomeFailed
		exec.Message = result.Error
	}
	s.logger.Infow("scheduled generation finished",
		"job", j.name,
		"run_id", result.RunID,
		"state", result.State,
		"created", result.CreatedCount,
		"skipped", result.SkippedCount,
		"errors", result.ErrorCount,
	)
	s.record(exec)
}

func (s *GenerationScheduler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.runTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.runTimeout)
}

func (s *GenerationScheduler) setExecuting(v bool) {
	s.mu.Lock()
	s.executing = v
	s.mu.Unlock()
}

func (s *GenerationScheduler) record(exec dto.SchedulerExecution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, exec)
	if over := len(s.history) - s.historySize; over > 0 {
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// Status reports the loop state and upcoming fire times.
func (s *GenerationScheduler) Status() dto.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := dto.SchedulerStatus{
		Running:        s.running,
		Executing:      s.executing,
		ExecutionCount: s.executionCount,
		Jobs:           make([]dto.ScheduledJob, 0, len(s.jobs)),
	}
	if !s.lastExecution.IsZero() {
		last := s.lastExecution
		status.LastExecutionTime = &last
	}
	for _, j := range s.jobs {
		status.Jobs = append(status.Jobs, dto.ScheduledJob{
			Name:     j.name,
			Kind:     j.kind,
			Spec:     j.spec,
			NextFire: j.next,
		})
	}
	return status
}

// History returns the recorded executions, newest first.
func (s *GenerationScheduler) History(limit int) []dto.SchedulerExecution {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]dto.SchedulerExecution, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}
