package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/tripmate/tripmate-go/internal/model"
)

type fakeItinerary struct {
	days    map[int][]model.Waypoint
	saveErr error
	deleted []string
}

func (f *fakeItinerary) ListDay(ctx context.Context, tripID int64, day int) ([]model.Waypoint, error) {
	return f.days[day], nil
}

func (f *fakeItinerary) SaveWaypoint(ctx context.Context, wp model.Waypoint) (model.Waypoint, bool, error) {
	if f.saveErr != nil {
		return model.Waypoint{}, false, f.saveErr
	}
	created := wp.ID == ""
	if created {
		wp.ID = "server-assigned"
	}
	return wp, created, nil
}

func (f *fakeItinerary) DeleteWaypoint(ctx context.Context, tripID int64, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeExpenses struct {
	expenses []model.Expense
	total    int64
}

func (f *fakeExpenses) CreateExpense(ctx context.Context, req model.CreateExpenseRequest) (model.Expense, error) {
	e := model.Expense{ID: "e1", TripID: req.TripID, Price: req.Price, Category: req.Category, Description: req.Description, Day: req.Day}
	f.expenses = append(f.expenses, e)
	return e, nil
}

func (f *fakeExpenses) ListExpenses(ctx context.Context, tripID int64) ([]model.Expense, error) {
	return f.expenses, nil
}

func (f *fakeExpenses) FilterByDay(ctx context.Context, tripID int64, day int) ([]model.Expense, error) {
	var out []model.Expense
	for _, e := range f.expenses {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) TotalExpense(ctx context.Context, tripID int64) (int64, error) {
	return f.total, nil
}

// testSession builds a session that never touches a socket; dispatch only
// needs the send channel and the backends.
func testSession(hub *Hub, it ItineraryBackend, ex ExpenseBackend) *Session {
	return &Session{
		hub:       hub,
		itinerary: it,
		expenses:  ex,
		settings:  DefaultSessionSettings(),
		logger:    slog.Default(),
		send:      make(chan []byte, 16),
	}
}

func request(t *testing.T, event string, ack int64, payload any) Envelope {
	t.Helper()
	env, err := NewEnvelope(event, payload)
	if err != nil {
		t.Fatalf("NewEnvelope(%s): %v", event, err)
	}
	env.Ack = ack
	return env
}

func nextReply(t *testing.T, s *Session) Envelope {
	t.Helper()
	select {
	case data := <-s.send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("malformed reply: %v", err)
		}
		return env
	default:
		t.Fatal("no reply queued")
		return Envelope{}
	}
}

func decodeAck(t *testing.T, env Envelope) AckTuple {
	t.Helper()
	if env.Event != EventAck {
		t.Fatalf("reply event = %s, want %s", env.Event, EventAck)
	}
	var tuple AckTuple
	if err := json.Unmarshal(env.Data, &tuple); err != nil {
		t.Fatalf("decode ack tuple: %v", err)
	}
	return tuple
}

func TestJoinRoomAddsMemberAndAcks(t *testing.T) {
	hub := NewHub(nil)
	s := testSession(hub, &fakeItinerary{}, nil)

	s.dispatch(context.Background(), request(t, EventJoinRoom, 1, JoinRoomRequest{TripID: 7}))

	if hub.Members(7) != 1 {
		t.Errorf("members = %d, want 1", hub.Members(7))
	}
	tuple := decodeAck(t, nextReply(t, s))
	if tuple.Failed() {
		t.Errorf("join failed: %s", tuple.Err)
	}
}

func TestJoinRoomSwitchesRooms(t *testing.T) {
	hub := NewHub(nil)
	s := testSession(hub, &fakeItinerary{}, nil)

	s.dispatch(context.Background(), request(t, EventJoinRoom, 1, JoinRoomRequest{TripID: 7}))
	s.dispatch(context.Background(), request(t, EventJoinRoom, 2, JoinRoomRequest{TripID: 9}))

	if hub.Members(7) != 0 {
		t.Errorf("old room still has %d members", hub.Members(7))
	}
	if hub.Members(9) != 1 {
		t.Errorf("new room has %d members, want 1", hub.Members(9))
	}
}

func TestJoinRoomRejectsMissingTripID(t *testing.T) {
	hub := NewHub(nil)
	s := testSession(hub, &fakeItinerary{}, nil)

	s.dispatch(context.Background(), request(t, EventJoinRoom, 1, JoinRoomRequest{}))

	tuple := decodeAck(t, nextReply(t, s))
	if !tuple.Failed() {
		t.Error("expected join failure for zero trip id")
	}
}

func TestGetDetailTripListRepliesWithDayList(t *testing.T) {
	backend := &fakeItinerary{days: map[int][]model.Waypoint{
		2: {{ID: "a", TripID: 7, Day: 2, Order: 1}, {ID: "b", TripID: 7, Day: 2, Order: 2}},
	}}
	s := testSession(NewHub(nil), backend, nil)

	s.dispatch(context.Background(), request(t, EventGetDetailTripList, 5, GetDetailTripListRequest{Room: 7, Day: 2}))

	reply := nextReply(t, s)
	if reply.Event != EventDetailTripList {
		t.Fatalf("event = %s, want %s", reply.Event, EventDetailTripList)
	}
	if reply.Ack != 5 {
		t.Errorf("ack = %d, want 5", reply.Ack)
	}
	var list DetailTripList
	if err := json.Unmarshal(reply.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.TripID != 7 || list.Day != 2 || len(list.Waypoints) != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateDetailTripAcksAndBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	sender := testSession(hub, &fakeItinerary{}, nil)
	peer := testSession(hub, &fakeItinerary{}, nil)
	hub.Join(7, sender)
	hub.Join(7, peer)

	wp := model.Waypoint{TripID: 7, Day: 1, PlaceLocation: "Pier 2", Order: 1}
	sender.dispatch(context.Background(), request(t, EventCreateDetailTrip, 3, wp))

	tuple := decodeAck(t, nextReply(t, sender))
	if tuple.Failed() {
		t.Fatalf("create failed: %s", tuple.Err)
	}
	var saved model.Waypoint
	if err := json.Unmarshal(tuple.Result, &saved); err != nil {
		t.Fatalf("decode saved waypoint: %v", err)
	}
	if saved.ID != "server-assigned" {
		t.Errorf("saved id = %q", saved.ID)
	}

	// The peer sees the broadcast, the sender does not.
	broadcast := nextReply(t, peer)
	if broadcast.Event != EventDetailTripCreated {
		t.Errorf("broadcast event = %s, want %s", broadcast.Event, EventDetailTripCreated)
	}
	select {
	case data := <-sender.send:
		t.Errorf("sender received its own broadcast: %s", data)
	default:
	}
}

func TestCreateDetailTripExistingIDBroadcastsUpdated(t *testing.T) {
	hub := NewHub(nil)
	sender := testSession(hub, &fakeItinerary{}, nil)
	peer := testSession(hub, &fakeItinerary{}, nil)
	hub.Join(7, sender)
	hub.Join(7, peer)

	wp := model.Waypoint{ID: "existing", TripID: 7, Day: 1, Order: 2}
	sender.dispatch(context.Background(), request(t, EventCreateDetailTrip, 4, wp))

	decodeAck(t, nextReply(t, sender))
	broadcast := nextReply(t, peer)
	if broadcast.Event != EventDetailTripUpdated {
		t.Errorf("broadcast event = %s, want %s", broadcast.Event, EventDetailTripUpdated)
	}
}

func TestCreateDetailTripBackendError(t *testing.T) {
	backend := &fakeItinerary{saveErr: errors.New("place location is required")}
	s := testSession(NewHub(nil), backend, nil)

	s.dispatch(context.Background(), request(t, EventCreateDetailTrip, 9, model.Waypoint{TripID: 7}))

	tuple := decodeAck(t, nextReply(t, s))
	if !tuple.Failed() {
		t.Fatal("expected failed ack")
	}
	if tuple.Err != "place location is required" {
		t.Errorf("err = %q", tuple.Err)
	}
}

func TestDeleteDetailTripWithoutAckIsSilent(t *testing.T) {
	backend := &fakeItinerary{}
	s := testSession(NewHub(nil), backend, nil)

	env := request(t, EventDeleteDetailTrip, 0, DeleteDetailTripRequest{ID: "a", TripID: 7, Day: 1})
	s.dispatch(context.Background(), env)

	if len(backend.deleted) != 1 || backend.deleted[0] != "a" {
		t.Errorf("deleted = %v", backend.deleted)
	}
	select {
	case data := <-s.send:
		t.Errorf("unexpected reply to fire-and-forget delete: %s", data)
	default:
	}
}

func TestItineraryEventsRejectedOnExpenseEndpoint(t *testing.T) {
	s := testSession(NewHub(nil), nil, &fakeExpenses{})

	s.dispatch(context.Background(), request(t, EventGetDetailTripList, 1, GetDetailTripListRequest{Room: 7, Day: 1}))

	tuple := decodeAck(t, nextReply(t, s))
	if !tuple.Failed() {
		t.Error("expected failure for itinerary event on expense endpoint")
	}
}

func TestUnknownEventFailsAck(t *testing.T) {
	s := testSession(NewHub(nil), &fakeItinerary{}, nil)

	s.dispatch(context.Background(), Envelope{Event: "selfDestruct", Ack: 2})

	tuple := decodeAck(t, nextReply(t, s))
	if !tuple.Failed() {
		t.Error("expected failure for unknown event")
	}
}

func TestCreateExpenseAcksAndBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	backend := &fakeExpenses{}
	sender := testSession(hub, nil, backend)
	peer := testSession(hub, nil, backend)
	hub.Join(7, sender)
	hub.Join(7, peer)

	req := model.CreateExpenseRequest{TripID: 7, Price: 120, Category: "food", Description: "dinner", Day: 2}
	sender.dispatch(context.Background(), request(t, EventCreateExpense, 6, req))

	tuple := decodeAck(t, nextReply(t, sender))
	if tuple.Failed() {
		t.Fatalf("create failed: %s", tuple.Err)
	}

	broadcast := nextReply(t, peer)
	if broadcast.Event != EventExpenseCreated {
		t.Errorf("broadcast event = %s, want %s", broadcast.Event, EventExpenseCreated)
	}
	var e model.Expense
	if err := json.Unmarshal(broadcast.Data, &e); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if e.Price != 120 || e.Day != 2 {
		t.Errorf("expense = %+v", e)
	}
}

func TestExpenseListAndFilter(t *testing.T) {
	backend := &fakeExpenses{expenses: []model.Expense{
		{ID: "e1", TripID: 7, Price: 10, Day: 1},
		{ID: "e2", TripID: 7, Price: 20, Day: 2},
	}}
	s := testSession(NewHub(nil), nil, backend)

	s.dispatch(context.Background(), request(t, EventGetAllExpenses, 1, TripDayRequest{TripID: 7}))
	reply := nextReply(t, s)
	if reply.Event != EventExpenseList || reply.Ack != 1 {
		t.Fatalf("reply = %+v, want %s with ack 1", reply, EventExpenseList)
	}
	var all []model.Expense
	if err := json.Unmarshal(reply.Data, &all); err != nil {
		t.Fatalf("decode all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}

	s.dispatch(context.Background(), request(t, EventFilterExpensesByDay, 2, TripDayRequest{TripID: 7, Day: 2}))
	reply = nextReply(t, s)
	if reply.Event != EventFilteredExpenses || reply.Ack != 2 {
		t.Fatalf("reply = %+v, want %s with ack 2", reply, EventFilteredExpenses)
	}
	var filtered []model.Expense
	if err := json.Unmarshal(reply.Data, &filtered); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "e2" {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestTotalExpense(t *testing.T) {
	s := testSession(NewHub(nil), nil, &fakeExpenses{total: 330})

	s.dispatch(context.Background(), request(t, EventGetTotalExpense, 8, TripDayRequest{TripID: 7}))

	reply := nextReply(t, s)
	if reply.Event != EventTotalExpense || reply.Ack != 8 {
		t.Fatalf("reply = %+v, want %s with ack 8", reply, EventTotalExpense)
	}
	var total model.ExpenseTotal
	if err := json.Unmarshal(reply.Data, &total); err != nil {
		t.Fatalf("decode total: %v", err)
	}
	if total.Total != 330 {
		t.Errorf("total = %d, want 330", total.Total)
	}
}
