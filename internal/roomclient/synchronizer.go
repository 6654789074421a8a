package roomclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tripmate/tripmate-go/internal/itinerary"
	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/room"
)

// Synchronizer owns the single room connection for one trip. It translates
// local editor intents into outbound room events and remote broadcasts into
// store mutations. No other component may emit on the connection.
type Synchronizer struct {
	*conn
	tripID int64
	store  *itinerary.Store
}

// NewSynchronizer creates a synchronizer for the trip's detail-trip room.
// url is the room endpoint (ws scheme); nothing is connected until Join.
func NewSynchronizer(url, token string, tripID int64, store *itinerary.Store, settings *Settings, logger *slog.Logger) *Synchronizer {
	s := &Synchronizer{
		conn:   newConn(url, token, settings, logger),
		tripID: tripID,
		store:  store,
	}
	s.conn.onEvent = s.handleEvent
	return s
}

// Join connects, announces room membership, and loads the initial list for
// day 1. On return the synchronizer is in StateJoined.
func (s *Synchronizer) Join(ctx context.Context) error {
	if err := s.dial(ctx); err != nil {
		return err
	}

	if _, err := s.requestAck(ctx, room.EventJoinRoom, room.JoinRoomRequest{TripID: s.tripID}); err != nil {
		s.close()
		return fmt.Errorf("join room %d: %w", s.tripID, err)
	}
	s.state.Store(int32(StateJoined))

	if _, err := s.RequestDay(ctx, 1); err != nil {
		return fmt.Errorf("initial list for day 1: %w", err)
	}
	return nil
}

// Close tears down the room connection. In-flight requests are not
// cancelled; only future deliveries stop.
func (s *Synchronizer) Close() {
	s.close()
}

// RequestDay fetches the full list for a day from the room and replaces the
// store's cache for that day. Implements itinerary.Fetcher.
func (s *Synchronizer) RequestDay(ctx context.Context, day int) ([]model.Waypoint, error) {
	reply, err := s.request(ctx, room.EventGetDetailTripList, room.GetDetailTripListRequest{Room: s.tripID, Day: day})
	if err != nil {
		return nil, err
	}
	if err := rejectionError(reply); err != nil {
		return nil, fmt.Errorf("%s rejected: %w", room.EventGetDetailTripList, err)
	}
	var list room.DetailTripList
	if err := json.Unmarshal(reply.Data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", room.EventDetailTripList, err)
	}
	s.store.SetDay(s.tripID, list.Day, list.Waypoints)
	return list.Waypoints, nil
}

// CreateWaypoint persists one waypoint. The caller's optimistic insert has
// already happened; on acknowledgement the store entry is confirmed (or
// replaced, when the room reassigned the id).
func (s *Synchronizer) CreateWaypoint(ctx context.Context, intent itinerary.CreateIntent) (model.Waypoint, error) {
	result, err := s.requestAck(ctx, room.EventCreateDetailTrip, intent.Waypoint)
	if err != nil {
		return model.Waypoint{}, err
	}
	var persisted model.Waypoint
	if err := json.Unmarshal(result, &persisted); err != nil {
		return model.Waypoint{}, fmt.Errorf("decode created waypoint: %w", err)
	}
	if persisted.ID != intent.Waypoint.ID {
		s.store.Remove(s.tripID, intent.Day, intent.Waypoint.ID)
		s.store.Insert(s.tripID, intent.Day, persisted)
	}
	return persisted, nil
}

// DeleteWaypoint announces a removal to the room. Fire-and-forget: the local
// list already reflects the deletion and the backend is the source of truth
// for eventual correctness.
func (s *Synchronizer) DeleteWaypoint(intent itinerary.DeleteIntent) error {
	return s.emit(room.EventDeleteDetailTrip, room.DeleteDetailTripRequest{
		ID:     intent.WaypointID,
		TripID: s.tripID,
		Day:    intent.Day,
	})
}

// PersistDay writes a day's sequence to the room, one create/update request
// per waypoint carrying its recomputed 1-based order. The protocol has no
// batch operation, so a failed waypoint does not roll back the others; the
// ids that failed are returned for the caller to surface.
func (s *Synchronizer) PersistDay(ctx context.Context, day int, seq []model.Waypoint) (failedIDs []string, err error) {
	seq = itinerary.Renumber(seq)
	for i := range seq {
		seq[i].TripID = s.tripID
		seq[i].Day = day
		if _, reqErr := s.requestAck(ctx, room.EventCreateDetailTrip, seq[i]); reqErr != nil {
			s.logger.Warn("persist waypoint failed", "id", seq[i].ID, "day", day, "error", reqErr)
			failedIDs = append(failedIDs, seq[i].ID)
			err = reqErr
		}
	}
	s.store.SetDay(s.tripID, day, seq)
	return failedIDs, err
}

// handleEvent reconciles uncorrelated room broadcasts into the store. Events
// for the same day arrive and apply in delivery order.
func (s *Synchronizer) handleEvent(env room.Envelope) {
	switch env.Event {
	case room.EventDetailTripList:
		var list room.DetailTripList
		if err := json.Unmarshal(env.Data, &list); err != nil {
			s.logger.Warn("dropping malformed list broadcast", "error", err)
			return
		}
		s.store.SetDay(s.tripID, list.Day, list.Waypoints)

	case room.EventDetailTripCreated, room.EventDetailTripUpdated:
		var wp model.Waypoint
		if err := json.Unmarshal(env.Data, &wp); err != nil {
			s.logger.Warn("dropping malformed waypoint broadcast", "event", env.Event, "error", err)
			return
		}
		// Applied to the event's cached day even when another day is
		// active, so remote edits to inactive days are not lost.
		s.store.Remove(s.tripID, wp.Day, wp.ID)
		s.store.Insert(s.tripID, wp.Day, wp)

	default:
		s.logger.Debug("ignoring room event", "event", env.Event)
	}
}
