package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// Kind discriminates the recurrence shapes an alarm can carry.
type Kind int

const (
	// KindUnspecified indicates the recurrence shape is not set.
	KindUnspecified Kind = iota
	// KindWeekly fires on a fixed set of weekdays, every week.
	KindWeekly
	// KindAnnual fires once a year on a fixed month and day.
	KindAnnual
	// KindOneOff fires exactly once on a single calendar date.
	KindOneOff
)

// String returns a stable label for logging and error messages.
func (k Kind) String() string {
	switch k {
	case KindWeekly:
		return "weekly"
	case KindAnnual:
		return "annual"
	case KindOneOff:
		return "one-off"
	default:
		return "unspecified"
	}
}

// ErrInvalidRule indicates a rule that violates the constraints of its kind.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Rule is a tagged union describing when an alarm repeats. Exactly one
// variant is active, selected by Kind; the fields of the other variants
// must stay at their zero values.
type Rule struct {
	// Weekdays holds the selected days for KindWeekly, in the order the
	// caller entered them, without duplicates.
	Weekdays []time.Weekday
	// Month and Day identify the yearly date for KindAnnual.
	Month time.Month
	Day   int
	// Date is the single firing date for KindOneOff, at midnight in the
	// location it was parsed in.
	Date time.Time

	Kind Kind
}

// Weekly builds a weekly rule over the given days.
func Weekly(days ...time.Weekday) Rule {
	return Rule{Kind: KindWeekly, Weekdays: days}
}

// Annual builds a yearly rule for the given month and day.
func Annual(month time.Month, day int) Rule {
	return Rule{Kind: KindAnnual, Month: month, Day: day}
}

// OneOff builds a single-shot rule for the given date. The time-of-day
// portion of date is ignored.
func OneOff(date time.Time) Rule {
	return Rule{Kind: KindOneOff, Date: date}
}

// Validate reports whether the rule satisfies the constraints of its kind.
// All returned errors wrap ErrInvalidRule.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindWeekly:
		if len(r.Weekdays) == 0 {
			return fmt.Errorf("%w: weekly rule needs at least one weekday", ErrInvalidRule)
		}
		seen := make(map[time.Weekday]struct{}, len(r.Weekdays))
		for _, day := range r.Weekdays {
			if day < time.Sunday || day > time.Saturday {
				return fmt.Errorf("%w: weekday %d out of range", ErrInvalidRule, day)
			}
			if _, ok := seen[day]; ok {
				return fmt.Errorf("%w: weekday %s repeated", ErrInvalidRule, day)
			}
			seen[day] = struct{}{}
		}
		return nil
	case KindAnnual:
		if r.Month < time.January || r.Month > time.December {
			return fmt.Errorf("%w: month %d out of range", ErrInvalidRule, r.Month)
		}
		if r.Day < 1 || r.Day > maxDayOfMonth(r.Month) {
			return fmt.Errorf("%w: day %d invalid for month %s", ErrInvalidRule, r.Day, r.Month)
		}
		return nil
	case KindOneOff:
		if r.Date.IsZero() {
			return fmt.Errorf("%w: one-off rule needs a date", ErrInvalidRule)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind is not set", ErrInvalidRule)
	}
}

// Equal reports whether two rules describe the same recurrence. Weekday
// order is significant because the canonical encoding preserves it.
func (r Rule) Equal(other Rule) bool {
	if r.Kind != other.Kind {
		return false
	}
	switch r.Kind {
	case KindWeekly:
		if len(r.Weekdays) != len(other.Weekdays) {
			return false
		}
		for i, day := range r.Weekdays {
			if other.Weekdays[i] != day {
				return false
			}
		}
		return true
	case KindAnnual:
		return r.Month == other.Month && r.Day == other.Day
	case KindOneOff:
		ry, rm, rd := r.Date.Date()
		oy, om, od := other.Date.Date()
		return ry == oy && rm == om && rd == od
	default:
		return true
	}
}

// maxDayOfMonth returns the largest day a rule may name for the month.
// February admits 29 so that leap-day rules stay representable; the
// evaluator resolves them to the next leap year.
func maxDayOfMonth(month time.Month) int {
	switch month {
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		return 29
	default:
		return 31
	}
}
