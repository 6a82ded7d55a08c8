// Package dto holds the results the preventive generator returns to the API,
// CLI and scheduler.
package dto

import (
	"fmt"
	"time"
)

// RunState is the lifecycle of one generation run.
type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// Trigger records what started a run.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerCLI       Trigger = "cli"
	TriggerScheduled Trigger = "scheduled"
	TriggerGuardRail Trigger = "guard_rail"
)

// IsAutomatic reports whether the run was started by the scheduler.
func (t Trigger) IsAutomatic() bool {
	return t == TriggerScheduled || t == TriggerGuardRail
}

type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// LogEntry is one line of a run's operation log.
type LogEntry struct {
	At       time.Time `json:"at"`
	Level    LogLevel  `json:"level"`
	PlanCode string    `json:"plan_code,omitempty"`
	Message  string    `json:"message"`
}

func (e LogEntry) String() string {
	if e.PlanCode == "" {
		return fmt.Sprintf("%s [%s] %s", e.At.UTC().Format(time.RFC3339), e.Level, e.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", e.At.UTC().Format(time.RFC3339), e.Level, e.PlanCode, e.Message)
}

// CreatedItem summarizes a work order created by a run.
type CreatedItem struct {
	WorkOrderID    uint   `json:"work_order_id"`
	PlanCode       string `json:"plan_code"`
	Description    string `json:"description"`
	OccurrenceDate string `json:"occurrence_date"`
	SequenceNumber int    `json:"sequence_number"`
	Status         string `json:"status"`
	Assignee       string `json:"assignee,omitempty"`
}

// PlanSummary identifies the plan a single-plan run processed.
type PlanSummary struct {
	ID              uint   `json:"id"`
	Code            string `json:"code"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	RecurrenceLabel string `json:"recurrence_label"`
	Recurrence      string `json:"recurrence"`
	GeneratedCount  int    `json:"generated_count"`
}

// GenerationResult is the outcome of GenerateAll or GenerateForPlan. A
// failed run still carries whatever it completed before the failure.
type GenerationResult struct {
	RunID           string        `json:"run_id"`
	Trigger         Trigger       `json:"trigger"`
	State           RunState      `json:"state"`
	Plan            *PlanSummary  `json:"plan,omitempty"`
	PlansConsidered int           `json:"plans_considered"`
	PlansProcessed  int           `json:"plans_processed"`
	CreatedCount    int           `json:"created_count"`
	SkippedCount    int           `json:"skipped_count"`
	ErrorCount      int           `json:"error_count"`
	CreatedItems    []CreatedItem `json:"created_items"`
	OperationLog    []LogEntry    `json:"operation_log"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Error           string        `json:"error,omitempty"`
}

func (r *GenerationResult) Failed() bool {
	return r.State == RunStateFailed
}

// Duration returns how long the run took, zero while running.
func (r *GenerationResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// PendingPlan is a plan with occurrences that have no work order yet.
type PendingPlan struct {
	PlanCode        string `json:"plan_code"`
	Description     string `json:"description"`
	EquipmentID     uint   `json:"equipment_id"`
	RecurrenceLabel string `json:"recurrence_label"`
	Recurrence      string `json:"recurrence"`
	Pending         int    `json:"pending"`
	OldestPending   string `json:"oldest_pending"`
	Truncated       bool   `json:"truncated,omitempty"`
}

// PendingOccurrencesResult is the read-only backlog view.
type PendingOccurrencesResult struct {
	Plans        []PendingPlan `json:"plans"`
	TotalPending int           `json:"total_pending"`
	AsOf         string        `json:"as_of"`
	Errors       []string      `json:"errors,omitempty"`
}

// ScheduledJob is one configured scheduler entry and when it fires next.
type ScheduledJob struct {
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Spec     string    `json:"spec"`
	NextFire time.Time `json:"next_fire"`
}

// SchedulerStatus is the automatic scheduler's health view.
type SchedulerStatus struct {
	Running           bool           `json:"running"`
	Executing         bool           `json:"executing"`
	LastExecutionTime *time.Time     `json:"last_execution_time,omitempty"`
	ExecutionCount    int            `json:"execution_count"`
	Jobs              []ScheduledJob `json:"jobs"`
}

// SchedulerExecution records one job firing, kept in a bounded in-memory
// history.
type SchedulerExecution struct {
	Job          string    `json:"job"`
	Kind         string    `json:"kind"`
	FiredAt      time.Time `json:"fired_at"`
	Outcome      string    `json:"outcome"`
	RunID        string    `json:"run_id,omitempty"`
	CreatedCount int       `json:"created_count,omitempty"`
	ErrorCount   int       `json:"error_count,omitempty"`
	Pending      int       `json:"pending,omitempty"`
	Message      string    `json:"message,omitempty"`
}
