package valueobjects

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cmms/internal/shared/biztime"
)

// RecurrenceClass is the closed set of supported plan frequencies.
type RecurrenceClass string

const (
	RecurrenceDaily      RecurrenceClass = "daily"
	RecurrenceWeekly     RecurrenceClass = "weekly"
	RecurrenceBiweekly   RecurrenceClass = "biweekly"
	RecurrenceMonthly    RecurrenceClass = "monthly"
	RecurrenceBimonthly  RecurrenceClass = "bimonthly"
	RecurrenceQuarterly  RecurrenceClass = "quarterly"
	RecurrenceSemiannual RecurrenceClass = "semiannual"
	RecurrenceAnnual     RecurrenceClass = "annual"
)

// DefaultRecurrence is used for labels that match no known class.
const DefaultRecurrence = RecurrenceWeekly

type recurrenceStep struct {
	days   int
	months int
}

var recurrenceSteps = map[RecurrenceClass]recurrenceStep{
	RecurrenceDaily:      {days: 1},
	RecurrenceWeekly:     {days: 7},
	RecurrenceBiweekly:   {days: 14},
	RecurrenceMonthly:    {months: 1},
	RecurrenceBimonthly:  {months: 2},
	RecurrenceQuarterly:  {months: 3},
	RecurrenceSemiannual: {months: 6},
	RecurrenceAnnual:     {months: 12},
}

// Order matters: a label is tested against these patterns top to bottom, so
// compound names ("bimestral", "semiannual") must come before the names they
// contain ("mensal"/"monthly", "anual"/"annual").
var recurrencePatterns = []struct {
	class    RecurrenceClass
	patterns []string
}{
	{RecurrenceBiweekly, []string{"quinzenal", "biweekly", "fortnight"}},
	{RecurrenceBimonthly, []string{"bimestral", "bimonthly"}},
	{RecurrenceSemiannual, []string{"semestral", "semianual", "semiannual", "semi-annual"}},
	{RecurrenceQuarterly, []string{"trimestral", "quarterly"}},
	{RecurrenceDaily, []string{"diari", "daily"}},
	{RecurrenceWeekly, []string{"semanal", "weekly"}},
	{RecurrenceMonthly, []string{"mensal", "monthly"}},
	{RecurrenceAnnual, []string{"anual", "annual", "yearly"}},
}

func (r RecurrenceClass) String() string {
	return string(r)
}

func (r RecurrenceClass) IsValid() bool {
	_, ok := recurrenceSteps[r]
	return ok
}

// Advance returns the date n steps after start. Month based classes use
// calendar arithmetic clamped to the target month's last day; stepping is
// always computed from start so a clamped month does not shift later ones.
func (r RecurrenceClass) Advance(start time.Time, n int) time.Time {
	step, ok := recurrenceSteps[r]
	if !ok {
		step = recurrenceSteps[DefaultRecurrence]
	}
	if step.months > 0 {
		return biztime.AddMonthsClamped(start, step.months*n)
	}
	return biztime.AddDays(start, step.days*n)
}

// ParseRecurrence maps a free-text frequency label onto a class. Matching is
// case and accent insensitive and looks for known substrings. ok is false
// when nothing matched and DefaultRecurrence was returned.
func ParseRecurrence(label string) (class RecurrenceClass, ok bool) {
	folded := FoldLabel(label)
	if folded == "" {
		return DefaultRecurrence, false
	}
	if c := RecurrenceClass(folded); c.IsValid() {
		return c, true
	}
	for _, entry := range recurrencePatterns {
		for _, p := range entry.patterns {
			if strings.Contains(folded, p) {
				return entry.class, true
			}
		}
	}
	return DefaultRecurrence, false
}

// FoldLabel lower-cases label and strips diacritics ("Diária" -> "diaria").
func FoldLabel(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(label))
	if err != nil {
		stripped = strings.TrimSpace(label)
	}
	return cases.Fold().String(stripped)
}
