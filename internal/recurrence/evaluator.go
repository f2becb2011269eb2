package recurrence

import "time"

// Evaluator computes the next concrete firing instant of a rule relative to
// an explicit reference time. It holds no clock of its own, which keeps every
// computation deterministic.
type Evaluator struct {
	location *time.Location
}

// NewEvaluator constructs an Evaluator that produces instants in the
// provided location. If loc is nil, the system local zone is used.
func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{location: loc}
}

// NextOccurrence returns the earliest instant at or after now at which the
// rule fires at the given time of day. The second return value is false when
// the rule will never fire again: a one-off rule whose instant lies strictly
// in the past, or a rule that fails validation.
//
// Per variant:
//   - Weekly: for each selected weekday the next date on that weekday is
//     taken; a candidate earlier today moves forward a full week. The
//     minimum across the selected days wins. Weekly rules never expire.
//   - Annual: the rule's month and day in now's year, bumped a year at a
//     time while the instant is not after now. February 29 resolves to the
//     next leap year instead of failing, so leap-day rules stay evaluable.
//   - One-off: exactly the rule's date at the given time of day.
func (e *Evaluator) NextOccurrence(rule Rule, at TimeOfDay, now time.Time) (time.Time, bool) {
	if rule.Validate() != nil {
		return time.Time{}, false
	}

	loc := e.location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	switch rule.Kind {
	case KindWeekly:
		return e.nextWeekly(rule, at, now, loc)
	case KindAnnual:
		return e.nextAnnual(rule, at, now, loc)
	case KindOneOff:
		return e.nextOneOff(rule, at, now, loc)
	default:
		return time.Time{}, false
	}
}

// WithinHorizon reports whether the rule's next occurrence falls inside the
// half-open window [now, now+horizon), returning the occurrence when it does.
func (e *Evaluator) WithinHorizon(rule Rule, at TimeOfDay, now time.Time, horizon time.Duration) (time.Time, bool) {
	next, ok := e.NextOccurrence(rule, at, now)
	if !ok {
		return time.Time{}, false
	}
	if !next.Before(now.Add(horizon)) {
		return time.Time{}, false
	}
	return next, true
}

func (e *Evaluator) nextWeekly(rule Rule, at TimeOfDay, now time.Time, loc *time.Location) (time.Time, bool) {
	var best time.Time
	for _, day := range rule.Weekdays {
		offset := (int(day) - int(now.Weekday()) + 7) % 7
		candidate := time.Date(now.Year(), now.Month(), now.Day()+offset, at.Hour, at.Minute, 0, 0, loc)
		if candidate.Before(now) {
			// Today's firing time already passed; next week it is.
			candidate = candidate.AddDate(0, 0, 7)
		}
		if best.IsZero() || candidate.Before(best) {
			best = candidate
		}
	}
	return best, !best.IsZero()
}

func (e *Evaluator) nextAnnual(rule Rule, at TimeOfDay, now time.Time, loc *time.Location) (time.Time, bool) {
	year := now.Year()
	// The longest stretch between leap years is eight years, so a handful of
	// iterations always suffices.
	for i := 0; i < 12; i++ {
		candidateYear := year
		if rule.Month == time.February && rule.Day == 29 {
			for !isLeapYear(candidateYear) {
				candidateYear++
			}
		}
		candidate := time.Date(candidateYear, rule.Month, rule.Day, at.Hour, at.Minute, 0, 0, loc)
		if candidate.After(now) {
			return candidate, true
		}
		year = candidateYear + 1
	}
	return time.Time{}, false
}

func (e *Evaluator) nextOneOff(rule Rule, at TimeOfDay, now time.Time, loc *time.Location) (time.Time, bool) {
	year, month, day := rule.Date.Date()
	candidate := time.Date(year, month, day, at.Hour, at.Minute, 0, 0, loc)
	if candidate.Before(now) {
		return time.Time{}, false
	}
	return candidate, true
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
