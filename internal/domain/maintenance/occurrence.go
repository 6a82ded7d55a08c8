package maintenance

import (
	"time"

	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/biztime"
)

// MaxOccurrences bounds a single calculation so a bogus start date on a
// daily plan cannot produce an unbounded backlog.
const MaxOccurrences = 1000

// Occurrences returns the ascending due dates of a plan from start through
// min(asOf, end). Dates equal to the bound are included. The k-th date is
// start advanced by k recurrence steps.
func Occurrences(start time.Time, end *time.Time, class vo.RecurrenceClass, asOf time.Time) []time.Time {
	start = biztime.NormalizeDate(start)
	bound := biztime.NormalizeDate(asOf)
	if end != nil {
		if e := biztime.NormalizeDate(*end); e.Before(bound) {
			bound = e
		}
	}
	if start.After(bound) {
		return nil
	}

	var dates []time.Time
	for k := 0; k < MaxOccurrences; k++ {
		d := class.Advance(start, k)
		if d.After(bound) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// Truncated reports whether a calculation hit MaxOccurrences.
func Truncated(dates []time.Time) bool {
	return len(dates) >= MaxOccurrences
}
