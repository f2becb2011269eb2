package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/orange-clock/internal/persistence"
)

// AlarmRepository implements persistence.AlarmRepository on SQLite.
type AlarmRepository struct {
	pool *ConnectionPool
	ids  func() string
	now  func() time.Time
}

// NewAlarmRepository creates a SQLite-backed alarm repository. When ids is
// nil, record identities are random UUIDs; when now is nil, timestamps come
// from the system clock.
func NewAlarmRepository(pool *ConnectionPool, ids func() string, now func() time.Time) *AlarmRepository {
	if ids == nil {
		ids = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &AlarmRepository{pool: pool, ids: ids, now: now}
}

// CreateAlarm inserts a new alarm row, assigning its identity and timestamps.
func (r *AlarmRepository) CreateAlarm(ctx context.Context, alarm persistence.Alarm) (persistence.Alarm, error) {
	alarm.ID = r.ids()
	created := r.now().UTC()
	alarm.CreatedAt = created
	alarm.UpdatedAt = created

	query := `
		INSERT INTO alarmas (id, hora, audio, repeticion, fecha, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		alarm.ID,
		alarm.Time,
		alarm.AudioRef,
		nullableString(alarm.Repetition),
		nullableString(alarm.Date),
		alarm.CreatedAt.Format(time.RFC3339),
		alarm.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Alarm{}, fmt.Errorf("failed to insert alarm: %w", err)
	}

	return alarm, nil
}

// GetAlarm retrieves an alarm by ID.
func (r *AlarmRepository) GetAlarm(ctx context.Context, id string) (persistence.Alarm, error) {
	if id == "" {
		return persistence.Alarm{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, hora, audio, repeticion, fecha, created_at, updated_at
		FROM alarmas
		WHERE id = ?
	`
	alarm, err := scanAlarm(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Alarm{}, persistence.ErrNotFound
		}
		return persistence.Alarm{}, err
	}

	return alarm, nil
}

// UpdateAlarm replaces the mutable fields of an existing alarm. The identity
// and creation timestamp are preserved.
func (r *AlarmRepository) UpdateAlarm(ctx context.Context, alarm persistence.Alarm) (persistence.Alarm, error) {
	if alarm.ID == "" {
		return persistence.Alarm{}, persistence.ErrNotFound
	}
	alarm.UpdatedAt = r.now().UTC()

	var updated persistence.Alarm
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE alarmas
			SET hora = ?, audio = ?, repeticion = ?, fecha = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			alarm.Time,
			alarm.AudioRef,
			nullableString(alarm.Repetition),
			nullableString(alarm.Date),
			alarm.UpdatedAt.Format(time.RFC3339),
			alarm.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update alarm: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, hora, audio, repeticion, fecha, created_at, updated_at
			FROM alarmas
			WHERE id = ?
		`, alarm.ID)
		updated, err = scanAlarm(row)
		return err
	})
	if err != nil {
		return persistence.Alarm{}, err
	}

	return updated, nil
}

// ListAlarms returns all alarms in insertion order.
func (r *AlarmRepository) ListAlarms(ctx context.Context) ([]persistence.Alarm, error) {
	query := `
		SELECT id, hora, audio, repeticion, fecha, created_at, updated_at
		FROM alarmas
		ORDER BY rowid
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alarms: %w", err)
	}
	defer rows.Close()

	alarms := make([]persistence.Alarm, 0)
	for rows.Next() {
		alarm, err := scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, alarm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alarms: %w", err)
	}

	return alarms, nil
}

// DeleteAlarm removes an alarm by ID, reporting ErrNotFound for unknown IDs.
func (r *AlarmRepository) DeleteAlarm(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM alarmas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete alarm: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlarm(row rowScanner) (persistence.Alarm, error) {
	var (
		alarm                persistence.Alarm
		repetition, date     sql.NullString
		createdAt, updatedAt sql.NullString
	)
	if err := row.Scan(&alarm.ID, &alarm.Time, &alarm.AudioRef, &repetition, &date, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Alarm{}, err
		}
		return persistence.Alarm{}, fmt.Errorf("failed to scan alarm: %w", err)
	}

	alarm.Repetition = repetition.String
	alarm.Date = date.String

	// Legacy rows predate the timestamp columns and scan as NULL.
	var err error
	if createdAt.Valid {
		if alarm.CreatedAt, err = time.Parse(time.RFC3339, createdAt.String); err != nil {
			return persistence.Alarm{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}
	if updatedAt.Valid {
		if alarm.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt.String); err != nil {
			return persistence.Alarm{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
	}

	return alarm, nil
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
