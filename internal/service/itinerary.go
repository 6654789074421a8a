package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/repository"
)

var (
	ErrTripIDRequired   = errors.New("tripId is required")
	ErrInvalidDay       = errors.New("day must be at least 1")
	ErrInvalidOrder     = errors.New("order must be at least 1")
	ErrWaypointNotFound = errors.New("waypoint not found")
)

// ItineraryService handles the server side of the day-partitioned waypoint
// lists: the room sessions call into it for every itinerary event.
type ItineraryService struct {
	repo *repository.WaypointRepository
}

// NewItineraryService creates a new ItineraryService.
func NewItineraryService(repo *repository.WaypointRepository) *ItineraryService {
	return &ItineraryService{repo: repo}
}

// ListDay returns one day's waypoints in position order. A day with no
// waypoints yields an empty list, never an error.
func (s *ItineraryService) ListDay(ctx context.Context, tripID int64, day int) ([]model.Waypoint, error) {
	if tripID == 0 {
		return nil, ErrTripIDRequired
	}
	if day < 1 {
		return nil, ErrInvalidDay
	}

	waypoints, err := s.repo.ListByTripDay(ctx, tripID, day)
	if err != nil {
		return nil, err
	}
	if waypoints == nil {
		waypoints = []model.Waypoint{}
	}
	return waypoints, nil
}

// SaveWaypoint inserts or rewrites a waypoint. A blank id gets a new one
// assigned; clients sending provisional ids keep them. created reports
// whether this was a new waypoint rather than a rewrite of an existing one.
func (s *ItineraryService) SaveWaypoint(ctx context.Context, wp model.Waypoint) (saved model.Waypoint, created bool, err error) {
	if wp.TripID == 0 {
		return model.Waypoint{}, false, ErrTripIDRequired
	}
	if wp.Day < 1 {
		return model.Waypoint{}, false, ErrInvalidDay
	}
	if wp.Order < 1 {
		return model.Waypoint{}, false, ErrInvalidOrder
	}
	if wp.ID == "" {
		wp.ID = uuid.New().String()
	}

	created, err = s.repo.Upsert(ctx, &wp)
	if err != nil {
		return model.Waypoint{}, false, err
	}
	return wp, created, nil
}

// DeleteWaypoint removes a waypoint. Deleting an id that is already gone is
// not an error: the client removed it locally before asking, and a repeated
// delete must stay idempotent.
func (s *ItineraryService) DeleteWaypoint(ctx context.Context, tripID int64, id string) error {
	if tripID == 0 {
		return ErrTripIDRequired
	}
	if id == "" {
		return ErrWaypointNotFound
	}

	err := s.repo.Delete(ctx, tripID, id)
	if errors.Is(err, repository.ErrWaypointNotFound) {
		return nil
	}
	return err
}
