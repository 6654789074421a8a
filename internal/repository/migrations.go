package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema bootstrap. Statements are idempotent so the server can run them on
// every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trips (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		start_date CHAR(10) NOT NULL,
		end_date CHAR(10) NOT NULL,
		start_time VARCHAR(5) NOT NULL DEFAULT '',
		end_time VARCHAR(5) NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS waypoints (
		id CHAR(36) PRIMARY KEY,
		trip_id BIGINT NOT NULL,
		place_name VARCHAR(255) NOT NULL DEFAULT '',
		place_location VARCHAR(512) NOT NULL DEFAULT '',
		position INT NOT NULL,
		trip_time VARCHAR(64) NOT NULL DEFAULT '',
		day INT NOT NULL,
		INDEX idx_waypoints_trip_day (trip_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id CHAR(36) PRIMARY KEY,
		trip_id BIGINT NOT NULL,
		price BIGINT NOT NULL,
		category VARCHAR(128) NOT NULL,
		description VARCHAR(512) NOT NULL,
		day INT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_expenses_trip_day (trip_id, day)
	)`,
}

// Migrate applies the schema bootstrap statements.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
