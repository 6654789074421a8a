package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/repository"
)

var (
	ErrPriceRequired       = errors.New("price is required")
	ErrCategoryRequired    = errors.New("category is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDayRequired         = errors.New("day is required")
)

// ExpenseService handles shared-expense business logic for the expense room.
type ExpenseService struct {
	repo *repository.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(repo *repository.ExpenseRepository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

// CreateExpense validates and records a shared cost. Every field of the
// expense form is required; rejections happen before anything is persisted.
func (s *ExpenseService) CreateExpense(ctx context.Context, req model.CreateExpenseRequest) (model.Expense, error) {
	if req.TripID == 0 {
		return model.Expense{}, ErrTripIDRequired
	}
	if req.Price <= 0 {
		return model.Expense{}, ErrPriceRequired
	}
	if req.Category == "" {
		return model.Expense{}, ErrCategoryRequired
	}
	if req.Description == "" {
		return model.Expense{}, ErrDescriptionRequired
	}
	if req.Day < 1 {
		return model.Expense{}, ErrDayRequired
	}

	expense := model.Expense{
		ID:          uuid.New().String(),
		TripID:      req.TripID,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		Day:         req.Day,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &expense); err != nil {
		return model.Expense{}, err
	}
	return expense, nil
}

// ListExpenses returns every expense recorded for a trip.
func (s *ExpenseService) ListExpenses(ctx context.Context, tripID int64) ([]model.Expense, error) {
	expenses, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

// FilterByDay returns one day's expenses.
func (s *ExpenseService) FilterByDay(ctx context.Context, tripID int64, day int) ([]model.Expense, error) {
	if day < 1 {
		return nil, ErrDayRequired
	}
	expenses, err := s.repo.ListByTripDay(ctx, tripID, day)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	return expenses, nil
}

// TotalExpense returns the trip-wide expense sum.
func (s *ExpenseService) TotalExpense(ctx context.Context, tripID int64) (int64, error) {
	return s.repo.TotalByTrip(ctx, tripID)
}
