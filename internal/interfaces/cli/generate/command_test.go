package generate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cmms/internal/application/preventive/dto"
)

func TestPrintResult(t *testing.T) {
	start := time.Date(2025, 10, 3, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer

	printResult(&buf, &dto.GenerationResult{
		RunID:           "run-1",
		Trigger:         dto.TriggerCLI,
		State:           dto.RunStateCompleted,
		PlansConsidered: 2,
		PlansProcessed:  2,
		CreatedCount:    1,
		SkippedCount:    1,
		CreatedItems:    []dto.CreatedItem{{WorkOrderID: 42, Description: "PMP-001 Lubrication #003"}},
		OperationLog: []dto.LogEntry{
			{At: start, Level: dto.LogInfo, Message: "2 active plans"},
			{At: start, Level: dto.LogWarn, PlanCode: "PMP-002", Message: "duplicate skipped"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	})

	out := buf.String()
	assert.Contains(t, out, "Run run-1 (cli): completed")
	assert.Contains(t, out, "+ #42 PMP-001 Lubrication #003")
	assert.Contains(t, out, "PMP-002: duplicate skipped")
	assert.NotContains(t, out, "2 active plans")
	assert.Contains(t, out, "Duration: 1.5s")
}

func TestPrintPending(t *testing.T) {
	var buf bytes.Buffer

	printPending(&buf, &dto.PendingOccurrencesResult{
		AsOf:         "2025-10-03",
		TotalPending: 5,
		Plans: []dto.PendingPlan{
			{PlanCode: "PMP-001", Pending: 5, OldestPending: "2025-09-28", Description: "Lubrication", RecurrenceLabel: "Daily", Truncated: true},
		},
		Errors: []string{"PMP-009: unknown recurrence"},
	})

	out := buf.String()
	assert.Contains(t, out, "Pending occurrences as of 2025-10-03: 5")
	assert.Contains(t, out, "5+")
	assert.Contains(t, out, "oldest 2025-09-28")
	assert.Contains(t, out, "! PMP-009: unknown recurrence")
}
