package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/orange-clock/internal/persistence"
	"github.com/example/orange-clock/internal/recurrence"
)

// AudioCatalog exposes the read-only audio asset lookup the service
// validates alarm references against.
type AudioCatalog interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// AlarmService orchestrates validation, recurrence coding and persistence
// for alarm operations. It reads the clock only through the injected now
// function, so every computation is reproducible in tests.
type AlarmService struct {
	alarms         persistence.AlarmRepository
	audio          AudioCatalog
	codec          *recurrence.Codec
	evaluator      *recurrence.Evaluator
	now            func() time.Time
	defaultHorizon time.Duration
	logger         *slog.Logger
}

// NewAlarmService wires dependencies for alarm operations. A nil now falls
// back to the system clock; a non-positive defaultHorizon falls back to 24h.
func NewAlarmService(
	alarms persistence.AlarmRepository,
	audio AudioCatalog,
	codec *recurrence.Codec,
	evaluator *recurrence.Evaluator,
	now func() time.Time,
	defaultHorizon time.Duration,
	logger *slog.Logger,
) *AlarmService {
	if codec == nil {
		codec = recurrence.NewCodec(nil)
	}
	if evaluator == nil {
		evaluator = recurrence.NewEvaluator(nil)
	}
	if now == nil {
		now = time.Now
	}
	if defaultHorizon <= 0 {
		defaultHorizon = 24 * time.Hour
	}
	return &AlarmService{
		alarms:         alarms,
		audio:          audio,
		codec:          codec,
		evaluator:      evaluator,
		now:            now,
		defaultHorizon: defaultHorizon,
		logger:         logger,
	}
}

// CreateAlarm validates the request and persists a new alarm. Alarms sharing
// the same firing time are allowed but reported as warnings.
func (s *AlarmService) CreateAlarm(ctx context.Context, input AlarmInput) (Alarm, []ConflictWarning, error) {
	if s == nil || s.alarms == nil {
		return Alarm{}, nil, fmt.Errorf("alarm repository not configured")
	}

	record, err := s.resolveInput(ctx, input)
	if err != nil {
		serviceLogger(ctx, s.logger, "create").WarnContext(ctx, "alarm rejected", "error_kind", ErrorKind(err))
		return Alarm{}, nil, err
	}

	warnings, err := s.sameTimeWarnings(ctx, record.Time, "")
	if err != nil {
		return Alarm{}, nil, err
	}

	persisted, err := s.alarms.CreateAlarm(ctx, record)
	if err != nil {
		return Alarm{}, nil, mapAlarmRepoError(err)
	}

	alarm, err := s.toAlarm(persisted)
	if err != nil {
		return Alarm{}, nil, err
	}

	serviceLogger(ctx, s.logger, "create").InfoContext(ctx, "alarm created", "alarm_id", alarm.ID, "time", record.Time)
	return alarm, warnings, nil
}

// UpdateAlarm replaces the time, audio reference and recurrence of an
// existing alarm.
func (s *AlarmService) UpdateAlarm(ctx context.Context, id string, input AlarmInput) (Alarm, []ConflictWarning, error) {
	if s == nil || s.alarms == nil {
		return Alarm{}, nil, fmt.Errorf("alarm repository not configured")
	}

	existing, err := s.alarms.GetAlarm(ctx, id)
	if err != nil {
		return Alarm{}, nil, mapAlarmRepoError(err)
	}

	record, err := s.resolveInput(ctx, input)
	if err != nil {
		serviceLogger(ctx, s.logger, "update").WarnContext(ctx, "alarm rejected", "alarm_id", id, "error_kind", ErrorKind(err))
		return Alarm{}, nil, err
	}
	record.ID = existing.ID

	warnings, err := s.sameTimeWarnings(ctx, record.Time, existing.ID)
	if err != nil {
		return Alarm{}, nil, err
	}

	persisted, err := s.alarms.UpdateAlarm(ctx, record)
	if err != nil {
		return Alarm{}, nil, mapAlarmRepoError(err)
	}

	alarm, err := s.toAlarm(persisted)
	if err != nil {
		return Alarm{}, nil, err
	}

	return alarm, warnings, nil
}

// DeleteAlarm removes an alarm by ID, reporting ErrNotFound for unknown IDs.
func (s *AlarmService) DeleteAlarm(ctx context.Context, id string) error {
	if s == nil || s.alarms == nil {
		return fmt.Errorf("alarm repository not configured")
	}

	if err := s.alarms.DeleteAlarm(ctx, id); err != nil {
		return mapAlarmRepoError(err)
	}

	serviceLogger(ctx, s.logger, "delete").InfoContext(ctx, "alarm deleted", "alarm_id", id)
	return nil
}

// DuplicateAlarm creates a fresh copy of an existing alarm. The copy shares
// every field with the source except its identity.
func (s *AlarmService) DuplicateAlarm(ctx context.Context, id string) (Alarm, []ConflictWarning, error) {
	if s == nil || s.alarms == nil {
		return Alarm{}, nil, fmt.Errorf("alarm repository not configured")
	}

	source, err := s.alarms.GetAlarm(ctx, id)
	if err != nil {
		return Alarm{}, nil, mapAlarmRepoError(err)
	}

	if _, err := s.toAlarm(source); err != nil {
		return Alarm{}, nil, fmt.Errorf("cannot duplicate alarm %s: %w", id, err)
	}

	return s.CreateAlarm(ctx, AlarmInput{
		Time:       source.Time,
		AudioRef:   source.AudioRef,
		Repetition: source.Repetition,
		Date:       source.Date,
	})
}

// ListAlarms returns every stored alarm in insertion order. Records whose
// recurrence payload cannot be decoded are returned separately, flagged with
// the decode failure, instead of aborting the listing.
func (s *AlarmService) ListAlarms(ctx context.Context) ([]Alarm, []InvalidAlarm, error) {
	if s == nil || s.alarms == nil {
		return nil, nil, fmt.Errorf("alarm repository not configured")
	}

	records, err := s.alarms.ListAlarms(ctx)
	if err != nil {
		return nil, nil, err
	}

	alarms := make([]Alarm, 0, len(records))
	var invalid []InvalidAlarm
	for _, record := range records {
		alarm, err := s.toAlarm(record)
		if err != nil {
			invalid = append(invalid, flagInvalid(record, err))
			continue
		}
		alarms = append(alarms, alarm)
	}

	if len(invalid) > 0 {
		serviceLogger(ctx, s.logger, "list").WarnContext(ctx, "skipped undecodable alarms", "count", len(invalid))
	}

	return alarms, invalid, nil
}

// ListUpcoming returns the alarms whose next occurrence falls inside the
// half-open window [reference, reference+horizon), sorted by that occurrence
// and then by ID. Expired one-off alarms never qualify; undecodable records
// are flagged and excluded.
func (s *AlarmService) ListUpcoming(ctx context.Context, params ListUpcomingParams) ([]UpcomingAlarm, []InvalidAlarm, error) {
	if s == nil || s.alarms == nil {
		return nil, nil, fmt.Errorf("alarm repository not configured")
	}

	reference := params.Reference
	if reference.IsZero() {
		reference = s.now()
	}
	horizon := params.Horizon
	if horizon <= 0 {
		horizon = s.defaultHorizon
	}

	records, err := s.alarms.ListAlarms(ctx)
	if err != nil {
		return nil, nil, err
	}

	upcoming := make([]UpcomingAlarm, 0, len(records))
	var invalid []InvalidAlarm
	for _, record := range records {
		alarm, err := s.toAlarm(record)
		if err != nil {
			invalid = append(invalid, flagInvalid(record, err))
			continue
		}
		next, ok := s.evaluator.WithinHorizon(alarm.Rule, alarm.Time, reference, horizon)
		if !ok {
			continue
		}
		upcoming = append(upcoming, UpcomingAlarm{Alarm: alarm, NextAt: next})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].NextAt.Equal(upcoming[j].NextAt) {
			return upcoming[i].Alarm.ID < upcoming[j].Alarm.ID
		}
		return upcoming[i].NextAt.Before(upcoming[j].NextAt)
	})

	if len(invalid) > 0 {
		serviceLogger(ctx, s.logger, "list_upcoming").WarnContext(ctx, "skipped undecodable alarms", "count", len(invalid))
	}

	return upcoming, invalid, nil
}

// resolveInput validates caller supplied fields and renders the persisted
// form of the alarm.
func (s *AlarmService) resolveInput(ctx context.Context, input AlarmInput) (persistence.Alarm, error) {
	vErr := &ValidationError{}

	timeValue := strings.TrimSpace(input.Time)
	if _, err := recurrence.ParseTimeOfDay(timeValue); err != nil {
		vErr.add("hora", "time must be HH:MM (24-hour)")
	}

	rule, ok := s.resolveRule(input, vErr)

	audioRef := strings.TrimSpace(input.AudioRef)
	if audioRef == "" {
		vErr.add("audio", "audio reference is required")
	}

	if vErr.HasErrors() {
		return persistence.Alarm{}, vErr
	}

	if !ok {
		// resolveRule records its own field errors; reaching here means an
		// internal inconsistency rather than bad input.
		return persistence.Alarm{}, fmt.Errorf("recurrence resolution failed without validation errors")
	}

	encoded, err := s.codec.Encode(rule)
	if err != nil {
		return persistence.Alarm{}, err
	}

	if s.audio != nil {
		exists, err := s.audio.Exists(ctx, audioRef)
		if err != nil {
			return persistence.Alarm{}, err
		}
		if !exists {
			return persistence.Alarm{}, fmt.Errorf("%w: %s", ErrUnknownAudioAsset, audioRef)
		}
	}

	return persistence.Alarm{
		Time:       timeValue,
		AudioRef:   audioRef,
		Repetition: encoded.Repetition,
		Date:       encoded.Date,
	}, nil
}

// resolveRule builds the recurrence rule from the selected mode, recording
// validation problems on vErr. Payload fields belonging to other modes must
// be empty.
func (s *AlarmService) resolveRule(input AlarmInput, vErr *ValidationError) (recurrence.Rule, bool) {
	switch input.Kind {
	case recurrence.KindWeekly:
		if input.Date != "" {
			vErr.add("fecha", "only one recurrence mode may be set")
			return recurrence.Rule{}, false
		}
		days, err := recurrence.ParseWeekdayCodes(input.Repetition)
		if err != nil {
			vErr.add("repeticion", "weekly days are invalid")
			return recurrence.Rule{}, false
		}
		return recurrence.Weekly(days...), true
	case recurrence.KindAnnual:
		if input.Date != "" {
			vErr.add("fecha", "only one recurrence mode may be set")
			return recurrence.Rule{}, false
		}
		month, day, err := recurrence.ParseMonthDay(input.Repetition)
		if err != nil {
			vErr.add("repeticion", "annual date is invalid")
			return recurrence.Rule{}, false
		}
		return recurrence.Annual(month, day), true
	case recurrence.KindOneOff:
		if input.Repetition != "" {
			vErr.add("repeticion", "only one recurrence mode may be set")
			return recurrence.Rule{}, false
		}
		date, err := s.codec.ParseDate(input.Date)
		if err != nil {
			vErr.add("fecha", "date must be YYYY-MM-DD")
			return recurrence.Rule{}, false
		}
		return recurrence.OneOff(date), true
	default:
		// Legacy untagged payload: classify by shape.
		rule, err := s.codec.Decode(input.Repetition, input.Date)
		if err != nil {
			vErr.add("repeticion", "recurrence is not recognized")
			return recurrence.Rule{}, false
		}
		return rule, true
	}
}

func (s *AlarmService) sameTimeWarnings(ctx context.Context, timeValue, excludeID string) ([]ConflictWarning, error) {
	records, err := s.alarms.ListAlarms(ctx)
	if err != nil {
		return nil, err
	}

	var warnings []ConflictWarning
	for _, record := range records {
		if record.ID == excludeID || record.Time != timeValue {
			continue
		}
		warnings = append(warnings, ConflictWarning{AlarmID: record.ID, Time: record.Time})
	}
	return warnings, nil
}

func (s *AlarmService) toAlarm(record persistence.Alarm) (Alarm, error) {
	at, err := recurrence.ParseTimeOfDay(record.Time)
	if err != nil {
		return Alarm{}, err
	}
	rule, err := s.codec.Decode(record.Repetition, record.Date)
	if err != nil {
		return Alarm{}, err
	}
	return Alarm{
		ID:         record.ID,
		Time:       at,
		AudioRef:   record.AudioRef,
		Rule:       rule,
		Repetition: record.Repetition,
		Date:       record.Date,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

func flagInvalid(record persistence.Alarm, err error) InvalidAlarm {
	return InvalidAlarm{
		ID:         record.ID,
		Time:       record.Time,
		AudioRef:   record.AudioRef,
		Repetition: record.Repetition,
		Date:       record.Date,
		Reason:     err.Error(),
	}
}

func mapAlarmRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
