package testfixtures

import (
	"time"

	"github.com/example/orange-clock/internal/persistence"
)

// ReferenceTime is the shared deterministic "now" used across tests:
// Monday 2025-03-03 07:00 UTC.
func ReferenceTime() time.Time {
	return time.Date(2025, time.March, 3, 7, 0, 0, 0, time.UTC)
}

// WeeklyAlarm builds a persisted weekly alarm row.
func WeeklyAlarm(id, at, audioRef, days string) persistence.Alarm {
	return persistence.Alarm{ID: id, Time: at, AudioRef: audioRef, Repetition: days}
}

// AnnualAlarm builds a persisted annual alarm row.
func AnnualAlarm(id, at, audioRef, monthDay string) persistence.Alarm {
	return persistence.Alarm{ID: id, Time: at, AudioRef: audioRef, Repetition: monthDay}
}

// OneOffAlarm builds a persisted one-off alarm row.
func OneOffAlarm(id, at, audioRef, date string) persistence.Alarm {
	return persistence.Alarm{ID: id, Time: at, AudioRef: audioRef, Date: date}
}
