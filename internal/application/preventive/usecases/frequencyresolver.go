package usecases

import (
	vo "cmms/internal/domain/maintenance/valueobjects"
	"cmms/internal/shared/logger"
)

// FrequencyResolver maps a plan's free-text recurrence label onto a
// recurrence class. Unknown labels fall back to weekly with a warning.
type FrequencyResolver struct {
	logger logger.Interface
}

func NewFrequencyResolver(logger logger.Interface) *FrequencyResolver {
	return &FrequencyResolver{logger: logger}
}

func (r *FrequencyResolver) Resolve(planCode, label string) (vo.RecurrenceClass, bool) {
	class, ok := vo.ParseRecurrence(label)
	if !ok {
		r.logger.Warnw("unrecognized recurrence label, using default",
			"plan_code", planCode,
			"label", label,
			"default", class,
		)
	}
	return class, ok
}
