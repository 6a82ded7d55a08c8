package usecases

import (
	"context"
	"fmt"
	"time"

	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

// PlanProcessor materializes the missing occurrences of one plan. Each
// occurrence is committed on its own, so a failure only loses that
// occurrence.
type PlanProcessor struct {
	workOrderRepo maintenance.WorkOrderRepository
	guard         *maintenance.DuplicateGuard
	factory       *WorkOrderFactory
	resolver      *FrequencyResolver
	logger        logger.Interface
}

func NewPlanProcessor(
	workOrderRepo maintenance.WorkOrderRepository,
	guard *maintenance.DuplicateGuard,
	factory *WorkOrderFactory,
	resolver *FrequencyResolver,
	logger logger.Interface,
) *PlanProcessor {
	return &PlanProcessor{
		workOrderRepo: workOrderRepo,
		guard:         guard,
		factory:       factory,
		resolver:      resolver,
		logger:        logger,
	}
}

// Process runs one plan as of the given day. The returned error is only set
// when ctx was cancelled; plan and occurrence failures are recorded on rec.
func (p *PlanProcessor) Process(ctx context.Context, plan *maintenance.Plan, asOf time.Time, rec *runRecorder) error {
	code := plan.Code()
	rec.considered()

	if !plan.Status().IsActive() {
		rec.info(code, "skipped: plan is %s", plan.Status())
		return nil
	}
	if plan.StartDate() == nil {
		rec.info(code, "skipped: plan has no start date")
		return nil
	}

	class, ok := p.resolver.Resolve(code, plan.RecurrenceLabel())
	if !ok {
		rec.warn(code, "unrecognized frequency %q, using %s", plan.RecurrenceLabel(), class)
	}

	occurrences := plan.Occurrences(class, asOf)
	if maintenance.Truncated(occurrences) {
		rec.warn(code, "occurrence calculation capped at %d dates", maintenance.MaxOccurrences)
	}
	if plan.IsClosed(asOf) {
		rec.info(code, "plan ended on %s", biztime.FormatDate(*plan.EndDate()))
	}
	rec.processed()

	if len(occurrences) == 0 {
		rec.info(code, "no occurrences due")
		return nil
	}

	highest, err := p.workOrderRepo.MaxSequenceNumber(ctx, plan.ID())
	if err != nil {
		p.logger.Warnw("failed to read highest sequence number", "plan_code", code, "error", err)
		highest = 0
	}

	var (
		pc      *PlanContext
		created int
		skipped int
	)
	for i, occurrence := range occurrences {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("plan %s interrupted: %w", code, err)
		}
		seq := i + 1

		match, err := p.guard.Check(ctx, maintenance.CandidateFor(plan, class, occurrence, seq))
		if err != nil {
			rec.occurrenceFailed(code, occurrence, seq, err)
			continue
		}
		if match != nil {
			skipped++
			rec.skipped(code, occurrence, seq, match.Rule)
			continue
		}

		if pc == nil {
			if pc, err = p.factory.Prepare(ctx, plan); err != nil {
				rec.planFailed(code, err)
				return nil
			}
		}
		if seq <= highest {
			rec.warn(code, "filling gap at %s (%s), highest existing sequence is %d",
				biztime.FormatDate(occurrence), maintenance.SequenceMarker(seq), highest)
		}

		wo, err := p.factory.Create(ctx, pc, occurrence, seq)
		if err != nil {
			rec.occurrenceFailed(code, occurrence, seq, err)
			continue
		}
		created++
		rec.created(plan, wo, occurrence)
	}

	rec.info(code, "%d due, %d created, %d already existed", len(occurrences), created, skipped)
	return nil
}
