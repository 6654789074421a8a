package repository

import (
	"context"
	"database/sql"

	"github.com/tripmate/tripmate-go/internal/model"
)

// ExpenseRepository handles expense persistence operations.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	query := `INSERT INTO expenses (id, trip_id, price, category, description, day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.TripID, e.Price, e.Category, e.Description, e.Day, e.CreatedAt,
	)
	return err
}

// ListByTrip retrieves all expenses for a trip in insertion order.
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID int64) ([]model.Expense, error) {
	query := `SELECT id, trip_id, price, category, description, day, created_at
		FROM expenses WHERE trip_id = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, tripID)
}

// ListByTripDay retrieves one day's expenses in insertion order.
func (r *ExpenseRepository) ListByTripDay(ctx context.Context, tripID int64, day int) ([]model.Expense, error) {
	query := `SELECT id, trip_id, price, category, description, day, created_at
		FROM expenses WHERE trip_id = ? AND day = ? ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, tripID, day)
}

// TotalByTrip sums every expense recorded for a trip.
func (r *ExpenseRepository) TotalByTrip(ctx context.Context, tripID int64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(price) FROM expenses WHERE trip_id = ?`, tripID,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...any) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(
			&e.ID, &e.TripID, &e.Price, &e.Category, &e.Description, &e.Day, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
