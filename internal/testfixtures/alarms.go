package testfixtures

import (
	"context"
	"sync"

	"github.com/example/orange-clock/internal/persistence"
)

// AlarmStore is an in-memory persistence.AlarmRepository for tests. It
// assigns identities from an IDGenerator and timestamps from a Clock, and
// preserves insertion order the way the SQLite repository does.
type AlarmStore struct {
	mu     sync.RWMutex
	ids    *IDGenerator
	clock  *Clock
	order  []string
	alarms map[string]persistence.Alarm

	// FailWith, when set, is returned by every operation. It simulates a
	// broken storage collaborator.
	FailWith error
}

// NewAlarmStore builds an empty store. Nil ids or clock fall back to fresh
// deterministic fixtures.
func NewAlarmStore(ids *IDGenerator, clock *Clock) *AlarmStore {
	if ids == nil {
		ids = NewIDGenerator("")
	}
	if clock == nil {
		clock = NewClock(ReferenceTime())
	}
	return &AlarmStore{
		ids:    ids,
		clock:  clock,
		alarms: make(map[string]persistence.Alarm),
	}
}

// CreateAlarm stores a new alarm, assigning its identity and timestamps.
func (s *AlarmStore) CreateAlarm(ctx context.Context, alarm persistence.Alarm) (persistence.Alarm, error) {
	if s.FailWith != nil {
		return persistence.Alarm{}, s.FailWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alarm.ID = s.ids.Next()
	now := s.clock.Now()
	alarm.CreatedAt = now
	alarm.UpdatedAt = now

	s.alarms[alarm.ID] = alarm
	s.order = append(s.order, alarm.ID)
	return alarm, nil
}

// GetAlarm retrieves an alarm by ID.
func (s *AlarmStore) GetAlarm(ctx context.Context, id string) (persistence.Alarm, error) {
	if s.FailWith != nil {
		return persistence.Alarm{}, s.FailWith
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	alarm, ok := s.alarms[id]
	if !ok {
		return persistence.Alarm{}, persistence.ErrNotFound
	}
	return alarm, nil
}

// UpdateAlarm replaces the mutable fields of a stored alarm.
func (s *AlarmStore) UpdateAlarm(ctx context.Context, alarm persistence.Alarm) (persistence.Alarm, error) {
	if s.FailWith != nil {
		return persistence.Alarm{}, s.FailWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.alarms[alarm.ID]
	if !ok {
		return persistence.Alarm{}, persistence.ErrNotFound
	}

	alarm.CreatedAt = existing.CreatedAt
	alarm.UpdatedAt = s.clock.Now()
	s.alarms[alarm.ID] = alarm
	return alarm, nil
}

// ListAlarms returns all alarms in insertion order.
func (s *AlarmStore) ListAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	alarms := make([]persistence.Alarm, 0, len(s.order))
	for _, id := range s.order {
		alarms = append(alarms, s.alarms[id])
	}
	return alarms, nil
}

// DeleteAlarm removes an alarm by ID.
func (s *AlarmStore) DeleteAlarm(ctx context.Context, id string) error {
	if s.FailWith != nil {
		return s.FailWith
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alarms[id]; !ok {
		return persistence.ErrNotFound
	}

	delete(s.alarms, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Seed inserts alarms directly, bypassing validation, for arranging legacy
// or corrupt rows in tests. IDs are kept as given.
func (s *AlarmStore) Seed(alarms ...persistence.Alarm) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, alarm := range alarms {
		if alarm.ID == "" {
			alarm.ID = s.ids.Next()
		}
		if _, ok := s.alarms[alarm.ID]; !ok {
			s.order = append(s.order, alarm.ID)
		}
		s.alarms[alarm.ID] = alarm
	}
}

// Len reports the number of stored alarms.
func (s *AlarmStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alarms)
}
