package usecases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/domain/maintenance"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/logger"
)

type memPlanRepo struct {
	mu          sync.Mutex
	plans       []*maintenance.Plan
	activities  map[uint][]*maintenance.PlanActivity
	increments  map[uint]int
	listErr     error
	incrementFn func(planID uint) error
}

func newMemPlanRepo(plans ...*maintenance.Plan) *memPlanRepo {
	return &memPlanRepo{
		plans:      plans,
		activities: map[uint][]*maintenance.PlanActivity{},
		increments: map[uint]int{},
	}
}

func (m *memPlanRepo) GetByCode(_ context.Context, code string) (*maintenance.Plan, error) {
	for _, p := range m.plans {
		if p.Code() == code {
			return p, nil
		}
	}
	return nil, maintenance.ErrPlanNotFound
}

func (m *memPlanRepo) ListActive(_ context.Context) ([]*maintenance.Plan, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*maintenance.Plan
	for _, p := range m.plans {
		if p.Status().IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlanRepo) ListActivities(_ context.Context, planID uint) ([]*maintenance.PlanActivity, error) {
	return m.activities[planID], nil
}

func (m *memPlanRepo) IncrementGeneratedCount(_ context.Context, planID uint, delta int) error {
	if m.incrementFn != nil {
		if err := m.incrementFn(planID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments[planID] += delta
	return nil
}

// memWorkOrderRepo stores work orders in memory and evaluates filters with
// WorkOrderFilter.Matches.
type memWorkOrderRepo struct {
	mu       sync.Mutex
	items    []*maintenance.WorkOrder
	nextID   uint
	createFn func(wo *maintenance.WorkOrder) error
	beforeFn func()
}

func newMemWorkOrderRepo() *memWorkOrderRepo {
	return &memWorkOrderRepo{nextID: 1}
}

func (m *memWorkOrderRepo) Create(_ context.Context, wo *maintenance.WorkOrder) error {
	if m.beforeFn != nil {
		m.beforeFn()
	}
	if m.createFn != nil {
		if err := m.createFn(wo); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := wo.SetID(m.nextID); err != nil {
		return err
	}
	m.nextID++
	m.items = append(m.items, wo)
	return nil
}

func (m *memWorkOrderRepo) add(wo *maintenance.WorkOrder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, wo)
}

func (m *memWorkOrderRepo) Exists(_ context.Context, f maintenance.WorkOrderFilter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, wo := range m.items {
		if f.Matches(wo) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memWorkOrderRepo) ListByPlan(_ context.Context, planID uint) ([]*maintenance.WorkOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*maintenance.WorkOrder
	for _, wo := range m.items {
		if wo.PlanID() != nil && *wo.PlanID() == planID {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (m *memWorkOrderRepo) MaxSequenceNumber(ctx context.Context, planID uint) (int, error) {
	list, _ := m.ListByPlan(ctx, planID)
	highest := 0
	for _, wo := range list {
		if wo.SequenceNumber() > highest {
			highest = wo.SequenceNumber()
		}
	}
	return highest, nil
}

func (m *memWorkOrderRepo) sequences(planID uint) []int {
	list, _ := m.ListByPlan(context.Background(), planID)
	out := make([]int, 0, len(list))
	for _, wo := range list {
		out = append(out, wo.SequenceNumber())
	}
	sort.Ints(out)
	return out
}

type mockEquipmentLookup struct {
	GetEquipmentFunc func(ctx context.Context, id uint) (*maintenance.Equipment, error)
}

func (m *mockEquipmentLookup) GetEquipment(ctx context.Context, id uint) (*maintenance.Equipment, error) {
	if m.GetEquipmentFunc != nil {
		return m.GetEquipmentFunc(ctx, id)
	}
	return &maintenance.Equipment{
		ID:       id,
		TenantID: 1,
		Tag:      "BMB-01",
		Name:     "Bomba de recalque",
		Location: &maintenance.Location{ID: 5, Name: "Casa de bombas", SiteID: 2, ZoneID: 3},
	}, nil
}

type mockLocationLookup struct {
	location *maintenance.Location
	err      error
}

func (m *mockLocationLookup) FirstLocation(_ context.Context) (*maintenance.Location, error) {
	return m.location, m.err
}

type mockUserDirectory struct {
	mock.Mock
}

func (m *mockUserDirectory) DisplayName(ctx context.Context, userID uint) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockRunNotifier struct {
	mock.Mock
}

func (m *mockRunNotifier) NotifyRun(ctx context.Context, result *dto.GenerationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

type memRunLogStore struct {
	mu   sync.Mutex
	runs []*dto.GenerationResult
}

func (m *memRunLogStore) Save(_ context.Context, result *dto.GenerationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, result)
	return nil
}

func (m *memRunLogStore) Recent(_ context.Context, limit int) ([]*dto.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*dto.GenerationResult
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// directTx runs fn without a real transaction.
type directTx struct{}

func (directTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errStore = errors.New("store unavailable")

// fixture wires the full generator over in-memory collaborators.
type fixture struct {
	clock      *biztime.ManualClock
	plans      *memPlanRepo
	workOrders *memWorkOrderRepo
	equipment  *mockEquipmentLookup
	users      *mockUserDirectory
	store      *memRunLogStore
	factory    *WorkOrderFactory
	runner     *GenerationRunner
	all        *GenerateAllUseCase
	single     *GenerateForPlanUseCase
	pending    *CheckPendingUseCase
}

func newFixture(today time.Time, plans ...*maintenance.Plan) *fixture {
	log := logger.NewNopLogger()
	f := &fixture{
		// Noon in the business timezone keeps Today() on the intended day.
		clock:      biztime.NewManualClock(today.Add(15 * time.Hour)),
		plans:      newMemPlanRepo(plans...),
		workOrders: newMemWorkOrderRepo(),
		equipment:  &mockEquipmentLookup{},
		users:      new(mockUserDirectory),
		store:      &memRunLogStore{},
	}

	resolver := NewFrequencyResolver(log)
	f.factory = NewWorkOrderFactory(f.plans, f.workOrders, f.equipment, f.users, directTx{}, f.clock, log)
	guard := maintenance.NewDuplicateGuard(f.workOrders)
	processor := NewPlanProcessor(f.workOrders, guard, f.factory, resolver, log)

	f.runner = NewGenerationRunner(f.clock, log)
	f.runner.SetRunLogStore(f.store)
	f.all = NewGenerateAllUseCase(f.plans, processor, f.runner, f.clock, log)
	f.single = NewGenerateForPlanUseCase(f.plans, processor, f.runner, f.clock, log)
	f.pending = NewCheckPendingUseCase(f.plans, f.workOrders, resolver, f.clock, log)
	return f
}

func planFixture(id uint, code, label string, start *time.Time, mutate func(p *maintenance.PlanParams)) *maintenance.Plan {
	params := maintenance.PlanParams{
		ID:              id,
		TenantID:        1,
		Code:            code,
		Description:     "Inspecao preventiva",
		EquipmentID:     20,
		RecurrenceLabel: label,
		StartDate:       start,
		Status:          "active",
	}
	if mutate != nil {
		mutate(&params)
	}
	plan, err := maintenance.ReconstructPlan(params)
	if err != nil {
		panic(err)
	}
	return plan
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := biztime.Date(y, m, d)
	return &t
}
