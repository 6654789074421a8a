package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tripmate/tripmate-go/internal/model"
)

var ErrWaypointNotFound = errors.New("waypoint not found")

// WaypointRepository handles waypoint persistence operations.
type WaypointRepository struct {
	db *sql.DB
}

// NewWaypointRepository creates a new WaypointRepository.
func NewWaypointRepository(db *sql.DB) *WaypointRepository {
	return &WaypointRepository{db: db}
}

// upsertQuery is the shared SQL for the per-waypoint save the room performs:
// clients re-send a whole day's waypoints on save, so an existing id means
// the row is rewritten in place.
const upsertQuery = `
	INSERT INTO waypoints (id, trip_id, place_name, place_location, position, trip_time, day)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		place_name     = VALUES(place_name),
		place_location = VALUES(place_location),
		position       = VALUES(position),
		trip_time      = VALUES(trip_time),
		day            = VALUES(day)`

// Upsert inserts or rewrites a waypoint. Returns true when a new row was
// created rather than an existing one updated.
func (r *WaypointRepository) Upsert(ctx context.Context, wp *model.Waypoint) (created bool, err error) {
	result, err := r.db.ExecContext(ctx, upsertQuery,
		wp.ID, wp.TripID, wp.PlaceName, wp.PlaceLocation, wp.Order, wp.TripTime, wp.Day,
	)
	if err != nil {
		return false, err
	}

	// MySQL reports 1 affected row for an insert, 2 for an update through
	// ON DUPLICATE KEY.
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// ListByTripDay retrieves one day's waypoints ordered by position.
func (r *WaypointRepository) ListByTripDay(ctx context.Context, tripID int64, day int) ([]model.Waypoint, error) {
	query := `SELECT id, trip_id, place_name, place_location, position, trip_time, day
		FROM waypoints WHERE trip_id = ? AND day = ? ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query, tripID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []model.Waypoint
	for rows.Next() {
		var wp model.Waypoint
		if err := rows.Scan(
			&wp.ID, &wp.TripID, &wp.PlaceName, &wp.PlaceLocation,
			&wp.Order, &wp.TripTime, &wp.Day,
		); err != nil {
			return nil, err
		}
		waypoints = append(waypoints, wp)
	}

	return waypoints, rows.Err()
}

// Delete removes a waypoint by id within its trip.
func (r *WaypointRepository) Delete(ctx context.Context, tripID int64, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM waypoints WHERE trip_id = ? AND id = ?`, tripID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrWaypointNotFound
	}

	return nil
}
