package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// NodeTables lists the per-type node tables in creation order.
var NodeTables = []string{
	"classification_nodes",
	"location_nodes",
	"procedure_nodes",
	"action_nodes",
	"account_type_nodes",
}

// Migrate runs all schema migrations. Every statement is safe to re-run.
func Migrate(db *sql.DB) error {
	stmts := make([]string, 0, len(NodeTables)*4+len(migrations))
	for _, table := range NodeTables {
		stmts = append(stmts, nodeTableDDL(table)...)
	}
	stmts = append(stmts, migrations...)

	for i, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// nodeTableDDL returns the statements creating one taxonomy table. The
// parent reference points at the same table, so a node can never hang under
// a node of another type.
func nodeTableDDL(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL CHECK(length(trim(name)) > 0),
		name_key    TEXT NOT NULL DEFAULT '',
		parent_id   TEXT REFERENCES %[1]s(id),
		is_required INTEGER NOT NULL DEFAULT 0,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_parent ON %[1]s(parent_id)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_order ON %[1]s(sort_order, created_at)`, table),
	}
}

var migrations = []string{
	// Two reconciliation runs racing to create the same governorate or
	// district: the loser gets a constraint error and reuses the winner.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_location_nodes_name_key
		ON location_nodes(COALESCE(parent_id, ''), name_key)`,

	`CREATE TABLE IF NOT EXISTS service_points (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		governorate_id TEXT NOT NULL REFERENCES location_nodes(id),
		district_id    TEXT NOT NULL REFERENCES location_nodes(id),
		address        TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		owner          TEXT NOT NULL DEFAULT '',
		category       TEXT NOT NULL DEFAULT '',
		start_date     TEXT,
		employee_count INTEGER NOT NULL DEFAULT 0,
		device_count   INTEGER NOT NULL DEFAULT 0,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_service_points_district ON service_points(district_id)`,
}
