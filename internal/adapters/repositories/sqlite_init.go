package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOrganizationsQuery := `
	CREATE TABLE IF NOT EXISTS organizations (
		org_id TEXT PRIMARY KEY,
		notify_target TEXT NOT NULL DEFAULT ''
	);
	`

	createWatchesQuery := `
	CREATE TABLE IF NOT EXISTS watches (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		org_id TEXT NOT NULL,
		courier TEXT NOT NULL,
		tracking_id TEXT NOT NULL,
		label TEXT NOT NULL,
		last_location TEXT,
		last_description TEXT,
		last_observed_at TEXT,
		last_delivered INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (org_id) REFERENCES organizations(org_id)
	);
	`

	createIdentityIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_watches_identity
	ON watches(org_id, courier, tracking_id);
	`

	statements := []string{
		createOrganizationsQuery,
		createWatchesQuery,
		createIdentityIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS organizations (
			org_id TEXT PRIMARY KEY,
			notify_target TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS watches (
			position BIGSERIAL PRIMARY KEY,
			org_id TEXT NOT NULL REFERENCES organizations(org_id),
			courier TEXT NOT NULL,
			tracking_id TEXT NOT NULL,
			label TEXT NOT NULL,
			last_location TEXT,
			last_description TEXT,
			last_observed_at TEXT,
			last_delivered BOOLEAN NOT NULL DEFAULT FALSE
		);
		`,
		`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_watches_identity
		ON watches(org_id, courier, tracking_id);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
