package itinerary

import (
	"github.com/google/uuid"

	"github.com/tripmate/tripmate-go/internal/model"
)

// Place is the user's selection from the place search, before it becomes a
// waypoint.
type Place struct {
	Name     string
	Location string
	TripTime string
}

// CreateIntent asks the room synchronizer to persist a new waypoint. The
// local insert already happened optimistically; the room replaces the
// provisional id on acknowledgement.
type CreateIntent struct {
	Day      int
	Waypoint model.Waypoint
}

// DeleteIntent asks the room synchronizer to delete a waypoint. The local
// removal already happened; delivery is fire-and-forget.
type DeleteIntent struct {
	Day        int
	WaypointID string
}

// AddPlace appends a provisional waypoint for the selected place to the end
// of the sequence and returns the intent to persist it.
func AddPlace(seq []model.Waypoint, tripID int64, day int, place Place) ([]model.Waypoint, CreateIntent) {
	wp := model.Waypoint{
		ID:            uuid.New().String(),
		TripID:        tripID,
		PlaceName:     place.Name,
		PlaceLocation: place.Location,
		Order:         len(seq) + 1,
		TripTime:      place.TripTime,
		Day:           day,
	}
	out := append(cloneSequence(seq), wp)
	return out, CreateIntent{Day: day, Waypoint: wp}
}

// DeletePlace removes the waypoint with the given id and returns the intent
// announcing the removal. The remaining elements keep their relative order.
// ok is false when the id is not in the sequence, in which case the sequence
// is returned unchanged and the intent must not be sent.
func DeletePlace(seq []model.Waypoint, day int, waypointID string) (out []model.Waypoint, intent DeleteIntent, ok bool) {
	for i, wp := range seq {
		if wp.ID == waypointID {
			out = make([]model.Waypoint, 0, len(seq)-1)
			out = append(out, seq[:i]...)
			out = append(out, seq[i+1:]...)
			return out, DeleteIntent{Day: day, WaypointID: waypointID}, true
		}
	}
	return cloneSequence(seq), DeleteIntent{}, false
}

// EditField updates one editable field of a waypoint in place. Nothing is
// sent to the room; edits are persisted only on explicit save.
func EditField(seq []model.Waypoint, waypointID, field, value string) []model.Waypoint {
	out := cloneSequence(seq)
	for i := range out {
		if out[i].ID != waypointID {
			continue
		}
		switch field {
		case "placeName":
			out[i].PlaceName = value
		case "placeLocation":
			out[i].PlaceLocation = value
		case "tripTime":
			out[i].TripTime = value
		}
	}
	return out
}

// Reorder moves the element at from to position to. Unlike the store's
// Reorder, indices may come from a stale drag-and-drop result, so
// out-of-range indices leave the sequence unchanged instead of panicking.
// The Order fields are not rewritten until Renumber runs before a save.
func Reorder(seq []model.Waypoint, from, to int) []model.Waypoint {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) || from == to {
		return cloneSequence(seq)
	}
	return moveElement(seq, from, to)
}

// Renumber rewrites every waypoint's Order to its 1-based position, which is
// the invariant the room expects on a persisted day.
func Renumber(seq []model.Waypoint) []model.Waypoint {
	out := cloneSequence(seq)
	for i := range out {
		out[i].Order = i + 1
	}
	return out
}
