package model

import "time"

// Expense is a shared cost recorded against one day of a trip.
type Expense struct {
	ID          string    `json:"id"`
	TripID      int64     `json:"tripId"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Day         int       `json:"day"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// CreateExpenseRequest represents a createExpense room event payload.
type CreateExpenseRequest struct {
	TripID      int64  `json:"tripId"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Day         int    `json:"day"`
}

// ExpenseTotal is the totalExpense room event payload.
type ExpenseTotal struct {
	Total int64 `json:"total"`
}
