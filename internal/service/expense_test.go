package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tripmate/tripmate-go/internal/model"
)

func TestCreateExpenseValidation(t *testing.T) {
	svc := NewExpenseService(nil)

	valid := model.CreateExpenseRequest{
		TripID:      7,
		Price:       120,
		Category:    "food",
		Description: "dinner",
		Day:         1,
	}

	cases := []struct {
		name   string
		mutate func(*model.CreateExpenseRequest)
		want   error
	}{
		{"missing trip id", func(r *model.CreateExpenseRequest) { r.TripID = 0 }, ErrTripIDRequired},
		{"zero price", func(r *model.CreateExpenseRequest) { r.Price = 0 }, ErrPriceRequired},
		{"negative price", func(r *model.CreateExpenseRequest) { r.Price = -5 }, ErrPriceRequired},
		{"missing category", func(r *model.CreateExpenseRequest) { r.Category = "" }, ErrCategoryRequired},
		{"missing description", func(r *model.CreateExpenseRequest) { r.Description = "" }, ErrDescriptionRequired},
		{"missing day", func(r *model.CreateExpenseRequest) { r.Day = 0 }, ErrDayRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := svc.CreateExpense(context.Background(), req)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFilterByDayValidation(t *testing.T) {
	svc := NewExpenseService(nil)

	if _, err := svc.FilterByDay(context.Background(), 7, 0); !errors.Is(err, ErrDayRequired) {
		t.Errorf("err = %v, want %v", err, ErrDayRequired)
	}
}
