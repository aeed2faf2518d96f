package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS class_types (
		id         TEXT PRIMARY KEY,
		label      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS identities (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		timezone     TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instructor_profiles (
		id           TEXT PRIMARY KEY,
		identity_id  TEXT NOT NULL,
		email        TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id                  TEXT PRIMARY KEY,
		date                TEXT NOT NULL,
		start_time          TEXT NOT NULL,
		end_time            TEXT NOT NULL,
		timezone            TEXT NOT NULL,
		class_type_id       TEXT NOT NULL,
		instructor_id       TEXT NOT NULL,
		rate_id             TEXT,
		rate_amount         REAL,
		meeting_id          TEXT,
		meeting_join_url    TEXT,
		meeting_host_url    TEXT,
		meeting_access_code TEXT,
		meeting_created_at  TEXT,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date)`,
	`CREATE TABLE IF NOT EXISTS rates (
		id               TEXT PRIMARY KEY,
		schedule_type    TEXT NOT NULL,
		category         TEXT NOT NULL,
		class_type_id    TEXT,
		package_id       TEXT,
		amount           REAL NOT NULL,
		secondary_amount REAL,
		effective_from   TEXT NOT NULL,
		effective_until  TEXT,
		active           INTEGER NOT NULL DEFAULT 1,
		created_at       TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rates_lookup ON rates(schedule_type, category, active)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(id),
		attendee_id TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_session ON bookings(session_id)`,
	`CREATE TABLE IF NOT EXISTS provider_token (
		singleton    INTEGER PRIMARY KEY CHECK (singleton = 1),
		access_token TEXT NOT NULL,
		api_base_url TEXT NOT NULL,
		expires_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
}

// Migrate applies the schema. Statements are idempotent so repeated runs are safe.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}
