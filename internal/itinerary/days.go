package itinerary

import (
	"context"
	"math"
	"time"

	"github.com/tripmate/tripmate-go/internal/model"
)

// ComputeDays returns the valid day indices 1..dayCount for an inclusive
// trip date range, where dayCount = ceil((end-start)/1day)+1. An end date
// before the start date is a data-quality condition, not an error: the
// result is simply empty and the caller shows no days.
func ComputeDays(start, end time.Time) []int {
	if end.Before(start) {
		return nil
	}
	dayCount := int(math.Ceil(end.Sub(start).Hours()/24)) + 1
	days := make([]int, dayCount)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

// ComputeDaysFromStrings is ComputeDays over wire-format dates. Unparseable
// dates yield no days.
func ComputeDaysFromStrings(startDate, endDate string) []int {
	start, err := model.ParseDate(startDate)
	if err != nil {
		return nil
	}
	end, err := model.ParseDate(endDate)
	if err != nil {
		return nil
	}
	return ComputeDays(start, end)
}

// Fetcher loads a day's sequence from the room when the local cache has
// nothing for it. The room synchronizer implements this.
type Fetcher interface {
	RequestDay(ctx context.Context, day int) ([]model.Waypoint, error)
}

// Selector tracks which day is active and materializes its sequence as the
// editable working copy. Switching days snapshots the working copy back
// into the store so returning to a day restores it without a round trip.
type Selector struct {
	store   *Store
	fetcher Fetcher
	tripID  int64

	active  int
	working []model.Waypoint
}

// NewSelector creates a Selector for one trip. No day is active until the
// first SwitchTo.
func NewSelector(store *Store, fetcher Fetcher, tripID int64) *Selector {
	return &Selector{store: store, fetcher: fetcher, tripID: tripID}
}

// Active returns the active day index, or 0 if no day has been selected.
func (s *Selector) Active() int {
	return s.active
}

// Waypoints returns the active day's working copy.
func (s *Selector) Waypoints() []model.Waypoint {
	return cloneSequence(s.working)
}

// SetWaypoints replaces the active day's working copy after a local edit.
func (s *Selector) SetWaypoints(seq []model.Waypoint) {
	s.working = cloneSequence(seq)
}

// SwitchTo snapshots the current working copy into the store under the
// previously active day, then makes day active. If the store has nothing
// cached for day, the fetcher is asked before the day is considered ready.
func (s *Selector) SwitchTo(ctx context.Context, day int) error {
	if s.active != 0 {
		s.store.SetDay(s.tripID, s.active, s.working)
	}

	seq := s.store.GetDay(s.tripID, day)
	if len(seq) == 0 && s.fetcher != nil {
		fetched, err := s.fetcher.RequestDay(ctx, day)
		if err != nil {
			return err
		}
		s.store.SetDay(s.tripID, day, fetched)
		seq = fetched
	}

	s.active = day
	s.working = cloneSequence(seq)
	return nil
}
