// Package localcache persists the last-known waypoint list per (trip, day)
// on the client, so a view can show something before the room responds.
package localcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tripmate/tripmate-go/internal/model"
)

// Cache is a SQLite-backed snapshot store. The path can be ":memory:" for
// an in-memory cache.
type Cache struct {
	db *sql.DB
}

// Open opens (and if needed bootstraps) the cache database.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS day_snapshots (
		trip_id INTEGER NOT NULL,
		day INTEGER NOT NULL,
		waypoints TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL,
		PRIMARY KEY (trip_id, day)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put snapshots a day's sequence, replacing any previous snapshot.
func (c *Cache) Put(ctx context.Context, tripID int64, day int, seq []model.Waypoint) error {
	data, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO day_snapshots (trip_id, day, waypoints, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (trip_id, day) DO UPDATE SET waypoints = excluded.waypoints, saved_at = excluded.saved_at`,
		tripID, day, string(data), time.Now().UTC(),
	)
	return err
}

// Get returns the last snapshot for a day, or ok=false when none exists.
func (c *Cache) Get(ctx context.Context, tripID int64, day int) (seq []model.Waypoint, ok bool, err error) {
	var data string
	err = c.db.QueryRowContext(ctx,
		`SELECT waypoints FROM day_snapshots WHERE trip_id = ? AND day = ?`,
		tripID, day,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if err := json.Unmarshal([]byte(data), &seq); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return seq, true, nil
}
