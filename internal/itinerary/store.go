// Package itinerary holds the client-side day-partitioned waypoint model:
// the per-day cache, day-index math, and the pure editing operations that
// produce outbound room intents.
package itinerary

import (
	"fmt"
	"sync"

	"github.com/tripmate/tripmate-go/internal/model"
)

type dayKey struct {
	tripID int64
	day    int
}

// Store caches the ordered waypoint sequence for each (trip, day) pair.
// It is a plain in-memory mapping and never talks to the network; the room
// synchronizer writes into it and the selector/editor read from it.
//
// All methods are safe for concurrent use: the synchronizer's read loop
// delivers remote events on its own goroutine.
type Store struct {
	mu   sync.Mutex
	days map[dayKey][]model.Waypoint
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{days: make(map[dayKey][]model.Waypoint)}
}

// GetDay returns a copy of the cached sequence for the given day, or an
// empty sequence if the day was never loaded.
func (s *Store) GetDay(tripID int64, day int) []model.Waypoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSequence(s.days[dayKey{tripID, day}])
}

// SetDay replaces the cached sequence for the given day wholesale. Used when
// the room delivers a fresh list.
func (s *Store) SetDay(tripID int64, day int, seq []model.Waypoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[dayKey{tripID, day}] = cloneSequence(seq)
}

// Insert appends a waypoint to the end of its day's sequence. Other days are
// untouched and no renumbering happens.
func (s *Store) Insert(tripID int64, day int, wp model.Waypoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := dayKey{tripID, day}
	s.days[k] = append(s.days[k], wp)
}

// Remove deletes the waypoint with the given id from the day's sequence.
// Remaining entries keep their relative order and their Order fields; the
// editor renumbers before persistence. Returns false if the id is not
// present.
func (s *Store) Remove(tripID int64, day int, waypointID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := dayKey{tripID, day}
	seq := s.days[k]
	for i, wp := range seq {
		if wp.ID == waypointID {
			s.days[k] = append(seq[:i], seq[i+1:]...)
			return true
		}
	}
	return false
}

// Reorder moves the element at from to position to within the day's
// sequence. Indices are 0-based positions in the current sequence;
// out-of-range indices are a programming error and panic, since callers are
// expected to pass indices obtained from the sequence they just read.
func (s *Store) Reorder(tripID int64, day int, from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := dayKey{tripID, day}
	seq := s.days[k]
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		panic(fmt.Sprintf("itinerary: reorder index out of range (from=%d to=%d len=%d)", from, to, len(seq)))
	}
	s.days[k] = moveElement(seq, from, to)
}

// Len returns the number of waypoints cached for the given day.
func (s *Store) Len(tripID int64, day int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days[dayKey{tripID, day}])
}

func cloneSequence(seq []model.Waypoint) []model.Waypoint {
	out := make([]model.Waypoint, len(seq))
	copy(out, seq)
	return out
}

func moveElement(seq []model.Waypoint, from, to int) []model.Waypoint {
	out := make([]model.Waypoint, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)
	moved := seq[from]
	out = append(out[:to], append([]model.Waypoint{moved}, out[to:]...)...)
	return out
}
