package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tripmate/tripmate-go/internal/model"
)

var ErrTripNotFound = errors.New("trip not found")

// TripRepository handles trip persistence operations. Trips are created by
// the backend's owning service; this server only reads and updates them.
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new TripRepository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a trip by id.
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*model.Trip, error) {
	query := `SELECT id, name, start_date, end_date, start_time, end_time, created_at, updated_at
		FROM trips WHERE id = ?`

	trip := &model.Trip{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trip.ID, &trip.Name, &trip.StartDate, &trip.EndDate,
		&trip.StartTime, &trip.EndTime, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return trip, nil
}

// Update rewrites a trip's name and date range.
func (r *TripRepository) Update(ctx context.Context, trip *model.Trip) error {
	query := `UPDATE trips SET name = ?, start_date = ?, end_date = ?, start_time = ?, end_time = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		trip.Name, trip.StartDate, trip.EndDate, trip.StartTime, trip.EndTime, trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// MySQL reports zero affected rows for no-op updates too, so make
		// sure the trip actually exists before reporting not found.
		if _, err := r.GetByID(ctx, trip.ID); err != nil {
			return err
		}
	}

	return nil
}
