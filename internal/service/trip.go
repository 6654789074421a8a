package service

import (
	"context"
	"errors"

	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/repository"
)

var (
	ErrTripNameRequired = errors.New("trip name is required")
	ErrInvalidTripDates = errors.New("trip dates must be YYYY-MM-DD with end date not before start date")
	ErrTripNotFound     = errors.New("trip not found")
)

// TripService handles trip metadata business logic.
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new TripService.
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrip returns a trip's metadata.
func (s *TripService) GetTrip(ctx context.Context, id int64) (model.TripResponse, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return model.TripResponse{}, ErrTripNotFound
		}
		return model.TripResponse{}, err
	}
	return tripToResponse(trip), nil
}

// UpdateTrip rewrites a trip's name and date range.
func (s *TripService) UpdateTrip(ctx context.Context, id int64, req model.UpdateTripRequest) (model.TripResponse, error) {
	if req.Name == "" {
		return model.TripResponse{}, ErrTripNameRequired
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return model.TripResponse{}, ErrInvalidTripDates
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return model.TripResponse{}, ErrInvalidTripDates
	}
	if end.Before(start) {
		return model.TripResponse{}, ErrInvalidTripDates
	}

	trip := &model.Trip{
		ID:        id,
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}

	if err := s.repo.Update(ctx, trip); err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return model.TripResponse{}, ErrTripNotFound
		}
		return model.TripResponse{}, err
	}

	return tripToResponse(trip), nil
}

func tripToResponse(trip *model.Trip) model.TripResponse {
	return model.TripResponse{
		ID:        trip.ID,
		Name:      trip.Name,
		StartDate: trip.StartDate,
		EndDate:   trip.EndDate,
		StartTime: trip.StartTime,
		EndTime:   trip.EndTime,
	}
}
