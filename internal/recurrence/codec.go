package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for one-off alarm dates.
const DateLayout = "2006-01-02"

// ErrUnrecognized indicates a persisted recurrence payload that matches none
// of the known shapes and therefore cannot be decoded.
var ErrUnrecognized = errors.New("recurrence: unrecognized recurrence")

// weekdayCodes maps the canonical three-letter codes to Go weekdays. The
// alphabet is fixed by the persisted format and must not change.
var weekdayCodes = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// Encoded is the canonical persisted representation of a rule. At most one
// of the two fields is non-empty: Repetition carries weekday codes joined by
// '-' for weekly rules and a zero-padded MM-DD for annual rules; Date carries
// the ISO date of a one-off rule.
type Encoded struct {
	Repetition string
	Date       string
}

// Codec translates between Rule values and their canonical persisted form.
//
// The persisted form has no explicit type tag; decoding classifies the
// payload by shape, in a fixed priority order. New call sites should prefer
// constructing tagged Rule values directly and treat Decode as a
// compatibility path for previously persisted data.
type Codec struct {
	location *time.Location
}

// NewCodec constructs a Codec that parses one-off dates in the provided
// location. If loc is nil, the system local zone is used.
func NewCodec(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.Local
	}
	return &Codec{location: loc}
}

// Encode validates the rule and renders its canonical form.
func (c *Codec) Encode(rule Rule) (Encoded, error) {
	if err := rule.Validate(); err != nil {
		return Encoded{}, err
	}

	switch rule.Kind {
	case KindWeekly:
		codes := make([]string, len(rule.Weekdays))
		for i, day := range rule.Weekdays {
			codes[i] = weekdayNames[day]
		}
		return Encoded{Repetition: strings.Join(codes, "-")}, nil
	case KindAnnual:
		return Encoded{Repetition: fmt.Sprintf("%02d-%02d", rule.Month, rule.Day)}, nil
	case KindOneOff:
		return Encoded{Date: rule.Date.Format(DateLayout)}, nil
	default:
		return Encoded{}, fmt.Errorf("%w: kind is not set", ErrInvalidRule)
	}
}

// Decode classifies a persisted payload and rebuilds the rule. Shapes are
// tried in priority order: weekday codes, then MM-DD, then a bare date.
// Anything else fails with ErrUnrecognized. Decode is the exact inverse of
// Encode for every value Encode produces.
func (c *Codec) Decode(repetition, date string) (Rule, error) {
	if repetition != "" {
		if days, err := ParseWeekdayCodes(repetition); err == nil {
			return Weekly(days...), nil
		}
		if month, day, err := ParseMonthDay(repetition); err == nil {
			return Annual(month, day), nil
		}
	}
	if date != "" {
		parsed, err := c.ParseDate(date)
		if err != nil {
			return Rule{}, err
		}
		return OneOff(parsed), nil
	}
	return Rule{}, fmt.Errorf("%w: repetition %q, date %q", ErrUnrecognized, repetition, date)
}

// ParseDate parses a one-off alarm date in the codec's location.
func (c *Codec) ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, c.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrUnrecognized, value)
	}
	return parsed, nil
}

// ParseWeekdayCodes parses a '-'-joined list of weekday codes, rejecting
// unknown codes and duplicates while preserving entry order.
func ParseWeekdayCodes(value string) ([]time.Weekday, error) {
	parts := strings.Split(value, "-")
	days := make([]time.Weekday, 0, len(parts))
	seen := make(map[time.Weekday]struct{}, len(parts))
	for _, part := range parts {
		day, ok := weekdayCodes[part]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday code %q", ErrUnrecognized, part)
		}
		if _, dup := seen[day]; dup {
			return nil, fmt.Errorf("%w: weekday code %q repeated", ErrUnrecognized, part)
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	return days, nil
}

// ParseMonthDay parses a zero-padded MM-DD string, validating the calendar
// range. February 29 is accepted; the evaluator resolves it to leap years.
func ParseMonthDay(value string) (time.Month, int, error) {
	if len(value) != 5 || value[2] != '-' {
		return 0, 0, fmt.Errorf("%w: %q is not MM-DD", ErrUnrecognized, value)
	}
	monthValue, ok := parseTwoDigits(value[:2])
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not MM-DD", ErrUnrecognized, value)
	}
	dayValue, ok := parseTwoDigits(value[3:])
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q is not MM-DD", ErrUnrecognized, value)
	}
	month := time.Month(monthValue)
	if month < time.January || month > time.December {
		return 0, 0, fmt.Errorf("%w: month %02d out of range", ErrUnrecognized, monthValue)
	}
	if dayValue < 1 || dayValue > maxDayOfMonth(month) {
		return 0, 0, fmt.Errorf("%w: day %02d invalid for month %02d", ErrUnrecognized, dayValue, monthValue)
	}
	return month, dayValue, nil
}

// WeekdayCode returns the canonical three-letter code for a weekday.
func WeekdayCode(day time.Weekday) string {
	return weekdayNames[day]
}
