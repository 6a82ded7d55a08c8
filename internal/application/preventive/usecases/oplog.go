package usecases

import (
	"fmt"
	"time"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

// runRecorder accumulates counters and the operation log of one run and
// mirrors every log line to the structured logger.
type runRecorder struct {
	result *dto.GenerationResult
	clock  biztime.Clock
	logger logger.Interface
}

func newRunRecorder(result *dto.GenerationResult, clock biztime.Clock, log logger.Interface) *runRecorder {
	return &runRecorder{
		result: result,
		clock:  clock,
		logger: log.With("run_id", result.RunID, "trigger", result.Trigger),
	}
}

func (r *runRecorder) append(level dto.LogLevel, planCode, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.result.OperationLog = append(r.result.OperationLog, dto.LogEntry{
		At:       r.clock.Now().UTC(),
		Level:    level,
		PlanCode: planCode,
		Message:  msg,
	})

	kv := []interface{}{"plan_code", planCode}
	switch level {
	case dto.LogError:
		r.logger.Errorw(msg, kv...)
	case dto.LogWarn:
		r.logger.Warnw(msg, kv...)
	default:
		r.logger.Infow(msg, kv...)
	}
}

func (r *runRecorder) info(planCode, format string, args ...any) {
	r.append(dto.LogInfo, planCode, format, args...)
}

func (r *runRecorder) warn(planCode, format string, args ...any) {
	r.append(dto.LogWarn, planCode, format, args...)
}

func (r *runRecorder) considered() { r.result.PlansConsidered++ }
func (r *runRecorder) processed()  { r.result.PlansProcessed++ }

func (r *runRecorder) created(plan *maintenance.Plan, wo *maintenance.WorkOrder, occurrence time.Time) {
	r.result.CreatedCount++
	r.result.CreatedItems = append(r.result.CreatedItems, dto.CreatedItem{
		WorkOrderID:    wo.ID(),
		PlanCode:       plan.Code(),
		Description:    wo.Description(),
		OccurrenceDate: biztime.FormatDate(occurrence),
		SequenceNumber: wo.SequenceNumber(),
		Status:         wo.Status().String(),
		Assignee:       wo.AssigneeName(),
	})
	r.info(plan.Code(), "created work order %d for %s (%s, %s)",
		wo.ID(), biztime.FormatDate(occurrence), maintenance.SequenceMarker(wo.SequenceNumber()), wo.Status())
}

func (r *runRecorder) skipped(planCode string, occurrence time.Time, seq int, rule string) {
	r.result.SkippedCount++
	r.logger.Debugw("occurrence already has a work order",
		"plan_code", planCode,
		"occurrence", biztime.FormatDate(occurrence),
		"sequence", seq,
		"rule", rule,
	)
}

func (r *runRecorder) occurrenceFailed(planCode string, occurrence time.Time, seq int, err error) {
	r.result.ErrorCount++
	r.append(dto.LogError, planCode, "failed to generate occurrence %s (%s): %v",
		biztime.FormatDate(occurrence), maintenance.SequenceMarker(seq), err)
}

func (r *runRecorder) planFailed(planCode string, err error) {
	r.result.ErrorCount++
	r.append(dto.LogError, planCode, "plan aborted: %v", err)
}
