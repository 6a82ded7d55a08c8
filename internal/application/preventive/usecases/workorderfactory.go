package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/db"
	"cmms/internal/shared/logger"
)

// PlaceholderAssignee is the display name used when the responsible user
// cannot be resolved.
func PlaceholderAssignee(userID uint) string {
	return fmt.Sprintf("User #%d", userID)
}

// PlanContext holds what the factory resolves once per plan and reuses for
// every occurrence of that plan.
type PlanContext struct {
	Plan       *maintenance.Plan
	Equipment  *maintenance.Equipment
	Location   *maintenance.Location
	Activities []*maintenance.PlanActivity
	Assignee   *maintenance.Assignee

	locationErr error
}

// WorkOrderFactory builds and persists the work order of one occurrence.
// Callers must have checked DuplicateGuard first.
type WorkOrderFactory struct {
	planRepo         maintenance.PlanRepository
	workOrderRepo    maintenance.WorkOrderRepository
	equipment        maintenance.EquipmentLookup
	users            maintenance.UserDirectory
	locations        maintenance.LocationLookup
	locationFallback bool
	txManager        db.Runner
	clock            biztime.Clock
	logger           logger.Interface
}

func NewWorkOrderFactory(
	planRepo maintenance.PlanRepository,
	workOrderRepo maintenance.WorkOrderRepository,
	equipment maintenance.EquipmentLookup,
	users maintenance.UserDirectory,
	txManager db.Runner,
	clock biztime.Clock,
	logger logger.Interface,
) *WorkOrderFactory {
	return &WorkOrderFactory{
		planRepo:      planRepo,
		workOrderRepo: workOrderRepo,
		equipment:     equipment,
		users:         users,
		txManager:     txManager,
		clock:         clock,
		logger:        logger,
	}
}

// SetLocationFallback enables using the first known location for equipment
// whose own hierarchy is incomplete.
func (f *WorkOrderFactory) SetLocationFallback(locations maintenance.LocationLookup) {
	f.locations = locations
	f.locationFallback = locations != nil
}

// Prepare resolves the plan's equipment, checklist and assignee. A missing
// equipment fails the whole plan.
func (f *WorkOrderFactory) Prepare(ctx context.Context, plan *maintenance.Plan) (*PlanContext, error) {
	equipment, err := f.equipment.GetEquipment(ctx, plan.EquipmentID())
	if err != nil {
		if errors.Is(err, maintenance.ErrEquipmentNotFound) {
			return nil, fmt.Errorf("equipment %d: %w", plan.EquipmentID(), err)
		}
		return nil, fmt.Errorf("failed to load equipment %d: %w", plan.EquipmentID(), err)
	}
	if equipment == nil {
		return nil, fmt.Errorf("equipment %d: %w", plan.EquipmentID(), maintenance.ErrEquipmentNotFound)
	}

	activities, err := f.planRepo.ListActivities(ctx, plan.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load plan activities: %w", err)
	}

	pc := &PlanContext{
		Plan:       plan,
		Equipment:  equipment,
		Activities: activities,
	}
	pc.Location, pc.locationErr = f.resolveLocation(ctx, plan, equipment)

	if userID, ok := plan.PrimaryResponsible(); ok {
		pc.Assignee = f.resolveAssignee(ctx, plan, userID)
	}
	return pc, nil
}

func (f *WorkOrderFactory) resolveLocation(ctx context.Context, plan *maintenance.Plan, equipment *maintenance.Equipment) (*maintenance.Location, error) {
	if equipment.HasLocation() {
		return equipment.Location, nil
	}
	if !f.locationFallback {
		return nil, fmt.Errorf("equipment %s: %w", equipment.Tag, maintenance.ErrLocationUnresolved)
	}

	location, err := f.locations.FirstLocation(ctx)
	if err != nil || location == nil {
		return nil, fmt.Errorf("equipment %s, no fallback location: %w", equipment.Tag, maintenance.ErrLocationUnresolved)
	}
	f.logger.Warnw("equipment location hierarchy incomplete, using first location",
		"plan_code", plan.Code(),
		"equipment_tag", equipment.Tag,
		"location_id", location.ID,
	)
	return location, nil
}

func (f *WorkOrderFactory) resolveAssignee(ctx context.Context, plan *maintenance.Plan, userID uint) *maintenance.Assignee {
	name, err := f.users.DisplayName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		f.logger.Warnw("failed to resolve responsible user, using placeholder",
			"plan_code", plan.Code(),
			"user_id", userID,
			"error", err,
		)
		name = PlaceholderAssignee(userID)
	}
	return &maintenance.Assignee{UserID: userID, DisplayName: name}
}

// Create persists the work order for one occurrence together with its
// checklist copy. The plan's generated counter is bumped afterwards on a
// best-effort basis.
func (f *WorkOrderFactory) Create(ctx context.Context, pc *PlanContext, occurrence time.Time, seq int) (*maintenance.WorkOrder, error) {
	if pc.locationErr != nil {
		return nil, pc.locationErr
	}

	wo, err := maintenance.NewPreventiveWorkOrder(maintenance.PreventiveWorkOrderParams{
		Plan:           pc.Plan,
		Equipment:      pc.Equipment,
		Location:       pc.Location,
		OccurrenceDate: occurrence,
		SequenceNumber: seq,
		Assignee:       pc.Assignee,
		Activities:     pc.Activities,
		CreatedAt:      f.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	err = f.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return f.workOrderRepo.Create(txCtx, wo)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist work order: %w", err)
	}

	if err := f.planRepo.IncrementGeneratedCount(ctx, pc.Plan.ID(), 1); err != nil {
		f.logger.Warnw("failed to update plan generated count",
			"plan_code", pc.Plan.Code(),
			"error", err,
		)
	}
	return wo, nil
}
