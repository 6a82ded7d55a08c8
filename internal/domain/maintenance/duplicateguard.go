package maintenance

import (
	"context"
	"fmt"
	"time"

	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
)

// DuplicateCandidate describes an occurrence about to be materialized.
type DuplicateCandidate struct {
	PlanID          uint
	PlanCode        string
	EquipmentID     uint
	RecurrenceLabel string
	OccurrenceDate  time.Time
	SequenceNumber  int
	// WindowDays is the tolerance of the opened-date window rule.
	WindowDays int
}

// PreventiveWindowDays is the opened-date tolerance for a recurrence class.
// Daily plans use an exact match, otherwise neighbouring occurrences would
// shadow each other.
func PreventiveWindowDays(class vo.RecurrenceClass) int {
	if class == vo.RecurrenceDaily {
		return 0
	}
	return 1
}

// CandidateFor builds the candidate for one occurrence of plan.
func CandidateFor(plan *Plan, class vo.RecurrenceClass, occurrence time.Time, seq int) DuplicateCandidate {
	return DuplicateCandidate{
		PlanID:          plan.ID(),
		PlanCode:        plan.Code(),
		EquipmentID:     plan.EquipmentID(),
		RecurrenceLabel: plan.RecurrenceLabel(),
		OccurrenceDate:  biztime.NormalizeDate(occurrence),
		SequenceNumber:  seq,
		WindowDays:      PreventiveWindowDays(class),
	}
}

// DuplicateRule is one equivalence test between a candidate and existing
// work orders, expressed as a filter.
type DuplicateRule interface {
	Name() string
	Filter(c DuplicateCandidate) WorkOrderFilter
}

type ruleFunc struct {
	name   string
	filter func(c DuplicateCandidate) WorkOrderFilter
}

func (r ruleFunc) Name() string                                { return r.name }
func (r ruleFunc) Filter(c DuplicateCandidate) WorkOrderFilter { return r.filter(c) }

const (
	RulePlanScheduledDate           = "plan_scheduled_date"
	RulePlanSequence                = "plan_sequence"
	RulePlanDescriptionMarker       = "plan_description_marker"
	RuleEquipmentPreventiveWindow   = "equipment_preventive_window"
	RuleEquipmentRecurrenceSequence = "equipment_recurrence_sequence"
)

// DefaultDuplicateRules returns the detection chain in evaluation order.
// Historical data was written by several generator versions that did not
// agree on which fields identify an occurrence, so each rule covers one of
// those shapes. Do not collapse them into a single check.
func DefaultDuplicateRules() []DuplicateRule {
	preventive := vo.CategoryPreventive
	return []DuplicateRule{
		ruleFunc{RulePlanScheduledDate, func(c DuplicateCandidate) WorkOrderFilter {
			d := c.OccurrenceDate
			return WorkOrderFilter{PlanID: &c.PlanID, ScheduledDate: &d}
		}},
		ruleFunc{RulePlanSequence, func(c DuplicateCandidate) WorkOrderFilter {
			seq := c.SequenceNumber
			return WorkOrderFilter{PlanID: &c.PlanID, SequenceNumber: &seq}
		}},
		ruleFunc{RulePlanDescriptionMarker, func(c DuplicateCandidate) WorkOrderFilter {
			seq := c.SequenceNumber
			return WorkOrderFilter{
				PlanID:              &c.PlanID,
				DescriptionContains: []string{c.PlanCode},
				DescriptionSequence: &seq,
			}
		}},
		ruleFunc{RuleEquipmentPreventiveWindow, func(c DuplicateCandidate) WorkOrderFilter {
			from := biztime.AddDays(c.OccurrenceDate, -c.WindowDays)
			to := biztime.AddDays(c.OccurrenceDate, c.WindowDays)
			return WorkOrderFilter{
				PlanID:      &c.PlanID,
				EquipmentID: &c.EquipmentID,
				Category:    &preventive,
				OpenedFrom:  &from,
				OpenedTo:    &to,
			}
		}},
		ruleFunc{RuleEquipmentRecurrenceSequence, func(c DuplicateCandidate) WorkOrderFilter {
			seq := c.SequenceNumber
			label := c.RecurrenceLabel
			return WorkOrderFilter{
				PlanID:          &c.PlanID,
				EquipmentID:     &c.EquipmentID,
				RecurrenceLabel: &label,
				SequenceNumber:  &seq,
			}
		}},
	}
}

// DuplicateMatch names the rule that recognized an existing work order.
type DuplicateMatch struct {
	Rule string
}

// WorkOrderMatcher answers whether any work order matches a filter.
// WorkOrderRepository satisfies it, as does WorkOrderSnapshot.
type WorkOrderMatcher interface {
	Exists(ctx context.Context, filter WorkOrderFilter) (bool, error)
}

// WorkOrderSnapshot evaluates filters against work orders already loaded in
// memory, for read-only passes over a single plan.
type WorkOrderSnapshot []*WorkOrder

func (s WorkOrderSnapshot) Exists(_ context.Context, filter WorkOrderFilter) (bool, error) {
	for _, wo := range s {
		if filter.Matches(wo) {
			return true, nil
		}
	}
	return false, nil
}

// DuplicateGuard runs the rule chain, first match wins.
type DuplicateGuard struct {
	repo  WorkOrderMatcher
	rules []DuplicateRule
}

func NewDuplicateGuard(repo WorkOrderMatcher, rules ...DuplicateRule) *DuplicateGuard {
	if len(rules) == 0 {
		rules = DefaultDuplicateRules()
	}
	return &DuplicateGuard{repo: repo, rules: rules}
}

// Check returns the first matching rule, or nil when the occurrence has no
// work order yet.
func (g *DuplicateGuard) Check(ctx context.Context, c DuplicateCandidate) (*DuplicateMatch, error) {
	for _, rule := range g.rules {
		found, err := g.repo.Exists(ctx, rule.Filter(c))
		if err != nil {
			return nil, fmt.Errorf("duplicate rule %s: %w", rule.Name(), err)
		}
		if found {
			return &DuplicateMatch{Rule: rule.Name()}, nil
		}
	}
	return nil, nil
}

func (g *DuplicateGuard) Exists(ctx context.Context, c DuplicateCandidate) (bool, error) {
	m, err := g.Check(ctx, c)
	return m != nil, err
}

// Rules lists the configured rule names in evaluation order.
func (g *DuplicateGuard) Rules() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name()
	}
	return names
}
