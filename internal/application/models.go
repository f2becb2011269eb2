package application

import (
	"time"

	"github.com/example/orange-clock/internal/recurrence"
)

// AlarmInput captures caller provided alarm fields.
//
// Kind selects the recurrence mode explicitly; the fields of the other modes
// must be left empty. Callers speaking the legacy untagged wire format leave
// Kind unspecified, and the payload is classified by shape instead.
type AlarmInput struct {
	Time       string
	AudioRef   string
	Kind       recurrence.Kind
	Repetition string
	Date       string
}

// Alarm represents a stored alarm with its recurrence decoded. Repetition
// and Date carry the canonical persisted encoding alongside the structured
// rule, so callers can render the record without re-encoding it.
type Alarm struct {
	ID         string
	Time       recurrence.TimeOfDay
	AudioRef   string
	Rule       recurrence.Rule
	Repetition string
	Date       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// UpcomingAlarm pairs an alarm with its next computed firing instant.
type UpcomingAlarm struct {
	Alarm  Alarm
	NextAt time.Time
}

// InvalidAlarm flags a persisted record whose recurrence payload could not
// be decoded. Such records are excluded from occurrence evaluation but are
// surfaced rather than silently dropped.
type InvalidAlarm struct {
	ID         string
	Time       string
	AudioRef   string
	Repetition string
	Date       string
	Reason     string
}

// ConflictWarning reports another alarm sharing the same firing time slot.
// Overlaps are allowed but surfaced to callers.
type ConflictWarning struct {
	AlarmID string
	Time    string
}

// ListUpcomingParams narrows the upcoming-alarms query. A zero Reference
// means the service clock; a non-positive Horizon means the service default.
type ListUpcomingParams struct {
	Reference time.Time
	Horizon   time.Duration
}
