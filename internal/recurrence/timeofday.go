package recurrence

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeOfDay indicates a string that is not a valid HH:MM value.
var ErrInvalidTimeOfDay = errors.New("recurrence: invalid time of day")

// TimeOfDay is a wall-clock time with minute precision, the granularity at
// which alarms fire.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict 24-hour "HH:MM" string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	if len(value) != 5 || value[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	hour, ok := parseTwoDigits(value[:2])
	if !ok || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	minute, ok := parseTwoDigits(value[3:])
	if !ok || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String renders the zero-padded 24-hour form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func parseTwoDigits(s string) (int, bool) {
	if len(s) != 2 || s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
