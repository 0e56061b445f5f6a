package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open connects to the postgres watch store and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open watch store: %w", err)
	}

	// Pool sizing fits the sweep's bounded fan-out plus the command surface.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify watch store connection: %w", err)
	}

	return db, nil
}
