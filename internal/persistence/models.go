package persistence

import "time"

// Alarm is the persisted alarm row.
//
// Repetition and Date carry the canonical recurrence encoding: weekday codes
// joined by '-' or a zero-padded MM-DD in Repetition, an ISO date in Date.
// At most one of the two is non-empty; an empty string means the column is
// NULL. The recurrence package owns the interpretation of these values.
type Alarm struct {
	ID         string
	Time       string // HH:MM, 24-hour wall clock
	AudioRef   string
	Repetition string
	Date       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
