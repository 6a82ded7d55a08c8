package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmms/internal/domain/maintenance"
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/infrastructure/persistence/models"
	"cmms/internal/shared/biztime"
	"cmms/internal/shared/db"
)

func newPreventiveOrder(t *testing.T, seq int, occurrence time.Time, assignee *maintenance.Assignee) *maintenance.WorkOrder {
	t.Helper()
	start := biztime.Date(2025, time.September, 5)
	plan, err := maintenance.ReconstructPlan(maintenance.PlanParams{
		ID:              1,
		Code:            "PMP_001",
		Description:     "Lubrificar 100%",
		EquipmentID:     20,
		RecurrenceLabel: "Semanal",
		StartDate:       &start,
		Status:          vo.PlanStatusActive,
	})
	require.NoError(t, err)

	wo, err := maintenance.NewPreventiveWorkOrder(maintenance.PreventiveWorkOrderParams{
		Plan:           plan,
		Equipment:      &maintenance.Equipment{ID: 20, Tag: "BMB-01"},
		Location:       &maintenance.Location{ID: 5, SiteID: 2, ZoneID: 3},
		OccurrenceDate: occurrence,
		SequenceNumber: seq,
		Assignee:       assignee,
		Activities: []*maintenance.PlanActivity{
			{Order: 1, Description: "Inspecionar"},
			{Order: 2, Description: "Lubrificar"},
		},
		CreatedAt: time.Date(2025, time.October, 3, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return wo
}

func TestWorkOrderRepository_CreateAndLoad(t *testing.T) {
	repo := NewWorkOrderRepository(setupTestDB(t))
	ctx := context.Background()
	occurrence := biztime.Date(2025, time.September, 12)

	wo := newPreventiveOrder(t, 2, occurrence, &maintenance.Assignee{UserID: 7, DisplayName: "Ana"})
	require.NoError(t, repo.Create(ctx, wo))
	require.NotZero(t, wo.ID())
	for _, a := range wo.Activities() {
		assert.NotZero(t, a.ID)
		assert.Equal(t, wo.ID(), a.WorkOrderID)
	}

	loaded, err := repo.GetByID(ctx, wo.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.WorkOrderStatusProgrammed, loaded.Status())
	require.NotNil(t, loaded.ScheduledDate())
	assert.Equal(t, occurrence, *loaded.ScheduledDate())
	assert.Equal(t, occurrence, loaded.OpenedDate())
	assert.Equal(t, "Ana", loaded.AssigneeName())
	assert.Equal(t, 2, loaded.SequenceNumber())
	assert.Equal(t, wo.CreatedAt(), loaded.CreatedAt())
	require.Len(t, loaded.Activities(), 2)
	assert.Equal(t, "Inspecionar", loaded.Activities()[0].Description)
	assert.Equal(t, vo.ReviewPending, loaded.Activities()[0].ReviewStatus)
}

func TestWorkOrderRepository_TransactionRollsBackActivities(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWorkOrderRepository(gdb)
	tm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	wo := newPreventiveOrder(t, 1, biztime.Date(2025, time.September, 5), nil)
	err := tm.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, wo); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, gdb.Model(&models.WorkOrderModel{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, gdb.Model(&models.WorkOrderActivityModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWorkOrderRepository_ExistsMatchesDuplicateRules(t *testing.T) {
	repo := NewWorkOrderRepository(setupTestDB(t))
	ctx := context.Background()
	occurrence := biztime.Date(2025, time.September, 12)

	require.NoError(t, repo.Create(ctx, newPreventiveOrder(t, 2, occurrence, &maintenance.Assignee{UserID: 7, DisplayName: "Ana"})))

	plan, err := maintenance.ReconstructPlan(maintenance.PlanParams{
		ID: 1, Code: "PMP_001", EquipmentID: 20, RecurrenceLabel: "Semanal", Status: vo.PlanStatusActive,
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		date       time.Time
		seq        int
		wantRule   string
		wantExists bool
	}{
		{"same date", occurrence, 9, maintenance.RulePlanScheduledDate, true},
		{"same sequence", biztime.Date(2025, time.December, 1), 2, maintenance.RulePlanSequence, true},
		{"day after", biztime.Date(2025, time.September, 13), 9, maintenance.RuleEquipmentPreventiveWindow, true},
		{"next week", biztime.Date(2025, time.September, 19), 3, "", false},
	}

	guard := maintenance.NewDuplicateGuard(repo)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := guard.Check(ctx, maintenance.CandidateFor(plan, vo.RecurrenceWeekly, tt.date, tt.seq))
			require.NoError(t, err)
			if !tt.wantExists {
				assert.Nil(t, match)
				return
			}
			require.NotNil(t, match)
			assert.Equal(t, tt.wantRule, match.Rule)
		})
	}
}

func TestWorkOrderRepository_DescriptionMarkerEscapesWildcards(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWorkOrderRepository(gdb)
	ctx := context.Background()

	// Legacy row: no sequence, no schedule, only the description marker.
	require.NoError(t, gdb.Create(&models.WorkOrderModel{
		Description: "PMP_001 Lubrificar BMB-01 #004",
		PlanID:      uintPtr(1),
		EquipmentID: 20,
		Category:    "corrective",
		OpenedDate:  biztime.ToMillis(biztime.Date(2024, time.January, 1)),
		Status:      "completed",
	}).Error)
	require.NoError(t, gdb.Create(&models.WorkOrderModel{
		Description: "PMPX001 #005",
		PlanID:      uintPtr(1),
		EquipmentID: 20,
		Category:    "corrective",
		OpenedDate:  biztime.ToMillis(biztime.Date(2024, time.January, 1)),
		Status:      "completed",
	}).Error)

	exists, err := repo.Exists(ctx, maintenance.WorkOrderFilter{
		PlanID:              uintPtr(1),
		DescriptionContains: []string{"PMP_001", maintenance.SequenceMarker(4)},
	})
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, maintenance.WorkOrderFilter{
		PlanID:              uintPtr(1),
		DescriptionContains: []string{"PMP_001", maintenance.SequenceMarker(5)},
	})
	require.NoError(t, err)
	assert.False(t, exists, "'_' must not match any character")
}

func TestWorkOrderRepository_ListByPlanAndMaxSequence(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWorkOrderRepository(gdb)
	ctx := context.Background()

	highest, err := repo.MaxSequenceNumber(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, highest)

	for _, seq := range []int{3, 1, 2} {
		occurrence := biztime.AddDays(biztime.Date(2025, time.September, 5), 7*(seq-1))
		require.NoError(t, repo.Create(ctx, newPreventiveOrder(t, seq, occurrence, nil)))
	}
	require.NoError(t, gdb.Create(&models.WorkOrderModel{
		Description:    "other plan",
		PlanID:         uintPtr(2),
		EquipmentID:    20,
		OpenedDate:     biztime.ToMillis(biztime.Date(2025, time.September, 5)),
		ScheduledDate:  int64Ptr(biztime.ToMillis(biztime.Date(2025, time.September, 5))),
		SequenceNumber: 40,
		Status:         "open",
	}).Error)

	highest, err = repo.MaxSequenceNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, highest)

	list, err := repo.ListByPlan(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, 1, list[0].SequenceNumber())
	assert.Equal(t, 3, list[2].SequenceNumber())
}

func TestWorkOrderRepository_ListByPlanKeepsUnknownStatus(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWorkOrderRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPreventiveOrder(t, 1, biztime.Date(2025, time.September, 5), nil)))
	require.NoError(t, gdb.Create(&models.WorkOrderModel{
		Description:    "PMP_001 Lubrificar BMB-01 #002",
		PlanID:         uintPtr(1),
		EquipmentID:    20,
		Category:       "preventive",
		OpenedDate:     biztime.ToMillis(biztime.Date(2025, time.September, 12)),
		ScheduledDate:  int64Ptr(biztime.ToMillis(biztime.Date(2025, time.September, 12))),
		SequenceNumber: 2,
		Status:         "closed",
	}).Error)

	list, err := repo.ListByPlan(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, vo.WorkOrderStatus("closed"), list[1].Status())
	assert.False(t, list[1].Status().IsValid())

	// The row still counts for duplicate detection.
	plan, err := maintenance.ReconstructPlan(maintenance.PlanParams{
		ID: 1, Code: "PMP_001", EquipmentID: 20, RecurrenceLabel: "Semanal", Status: vo.PlanStatusActive,
	})
	require.NoError(t, err)
	guard := maintenance.NewDuplicateGuard(maintenance.WorkOrderSnapshot(list))
	match, err := guard.Check(ctx, maintenance.CandidateFor(plan, vo.RecurrenceWeekly, biztime.Date(2025, time.September, 12), 2))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, maintenance.RulePlanScheduledDate, match.Rule)
}

func TestWorkOrderRepository_DescriptionRuleMatchesInMemorySemantics(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWorkOrderRepository(gdb)
	ctx := context.Background()

	rows := []string{"pmp_001 lubrificar BMB-01 #1000", "PMP_001 Lubrificar BMB-01 #007"}
	for _, d := range rows {
		require.NoError(t, gdb.Create(&models.WorkOrderModel{
			Description: d,
			PlanID:      uintPtr(1),
			EquipmentID: 20,
			Category:    "corrective",
			OpenedDate:  biztime.ToMillis(biztime.Date(2024, time.January, 1)),
			Status:      "completed",
		}).Error)
	}
	stored, err := repo.ListByPlan(ctx, 1)
	require.NoError(t, err)
	snapshot := maintenance.WorkOrderSnapshot(stored)

	tests := []struct {
		name string
		seq  int
		want bool
	}{
		{"lower-case plan code", 1000, true},
		{"marker prefix of a longer one", 100, false},
		{"exact marker", 7, true},
		{"absent marker", 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := tt.seq
			filter := maintenance.WorkOrderFilter{
				PlanID:              uintPtr(1),
				DescriptionContains: []string{"PMP_001"},
				DescriptionSequence: &seq,
			}
			inSQL, err := repo.Exists(ctx, filter)
			require.NoError(t, err)
			inMemory, err := snapshot.Exists(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inSQL)
			assert.Equal(t, inSQL, inMemory)
		})
	}
}
