package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const createAlarmsTable = `
CREATE TABLE IF NOT EXISTS alarmas (
	id TEXT PRIMARY KEY,
	hora TEXT NOT NULL,
	audio TEXT NOT NULL,
	repeticion TEXT DEFAULT NULL,
	fecha TEXT DEFAULT NULL,
	created_at TEXT DEFAULT NULL,
	updated_at TEXT DEFAULT NULL
)`

// legacyColumns are added to databases created by earlier versions of the
// schema, which started out with only id/hora/audio/repeticion.
var legacyColumns = []struct {
	name       string
	definition string
}{
	{name: "fecha", definition: "fecha TEXT DEFAULT NULL"},
	{name: "created_at", definition: "created_at TEXT DEFAULT NULL"},
	{name: "updated_at", definition: "updated_at TEXT DEFAULT NULL"},
}

// Migrate brings the alarmas table up to the current schema. It creates the
// table when absent and backfills columns that legacy databases lack, so an
// existing alarm database keeps working without manual intervention.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, createAlarmsTable); err != nil {
		return fmt.Errorf("failed to create alarmas table: %w", err)
	}

	existing, err := cp.tableColumns(ctx, "alarmas")
	if err != nil {
		return err
	}

	for _, column := range legacyColumns {
		if _, ok := existing[column.name]; ok {
			continue
		}
		alter := fmt.Sprintf("ALTER TABLE alarmas ADD COLUMN %s", column.definition)
		if _, err := cp.db.ExecContext(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %s: %w", column.name, err)
		}
	}

	return nil
}

func (cp *ConnectionPool) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := cp.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name       string
			columnType string
			notNull    int
			defaultVal sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &columnType, &notNull, &defaultVal, &primaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}

	return columns, nil
}
