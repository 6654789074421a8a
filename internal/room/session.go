package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripmate/tripmate-go/internal/model"
)

// ItineraryBackend is the slice of the itinerary service a session needs.
type ItineraryBackend interface {
	ListDay(ctx context.Context, tripID int64, day int) ([]model.Waypoint, error)
	SaveWaypoint(ctx context.Context, wp model.Waypoint) (saved model.Waypoint, created bool, err error)
	DeleteWaypoint(ctx context.Context, tripID int64, id string) error
}

// ExpenseBackend is the slice of the expense service a session needs.
type ExpenseBackend interface {
	CreateExpense(ctx context.Context, req model.CreateExpenseRequest) (model.Expense, error)
	ListExpenses(ctx context.Context, tripID int64) ([]model.Expense, error)
	FilterByDay(ctx context.Context, tripID int64, day int) ([]model.Expense, error)
	TotalExpense(ctx context.Context, tripID int64) (int64, error)
}

// SessionSettings tunes a session's transport behavior.
type SessionSettings struct {
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	PingInterval time.Duration
	SendBuffer   int
}

// DefaultSessionSettings returns the settings used when none are provided.
func DefaultSessionSettings() *SessionSettings {
	return &SessionSettings{
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  15 * time.Second,
		PingInterval: 5 * time.Second,
		SendBuffer:   16,
	}
}

// Session is one member's connection to a room namespace. It owns the
// websocket exclusively: the read pump dispatches inbound events and the
// write pump drains the send buffer, so hub broadcasts never write to the
// socket directly.
type Session struct {
	ws        *websocket.Conn
	hub       *Hub
	itinerary ItineraryBackend
	expenses  ExpenseBackend
	settings  *SessionSettings
	logger    *slog.Logger

	send chan []byte

	// tripID is set by joinRoom; zero until then.
	tripID int64
}

// NewSession wraps an upgraded websocket. Exactly one of itinerary/expenses
// is typically non-nil, matching the namespace the client connected to.
func NewSession(ws *websocket.Conn, hub *Hub, itinerary ItineraryBackend, expenses ExpenseBackend, settings *SessionSettings, logger *slog.Logger) *Session {
	if settings == nil {
		settings = DefaultSessionSettings()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ws:        ws,
		hub:       hub,
		itinerary: itinerary,
		expenses:  expenses,
		settings:  settings,
		logger:    logger,
		send:      make(chan []byte, settings.SendBuffer),
	}
}

// Serve runs the session until the connection drops or ctx is cancelled.
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if s.tripID != 0 {
			s.hub.Leave(s.tripID, s)
		}
		s.ws.Close()
	}()

	go s.writePump(ctx, cancel)
	s.readPump(ctx)
}

func (s *Session) writePump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	ticker := time.NewTicker(s.settings.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-s.send:
			s.ws.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.ws.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Session) readPump(ctx context.Context) {
	s.ws.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.ws.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout))
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("room session closed", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.logger.Warn("dropping malformed room message", "error", err)
			continue
		}

		s.dispatch(ctx, env)
	}
}

// dispatch handles one inbound event. Events for the same day are handled
// in delivery order on this single goroutine.
func (s *Session) dispatch(ctx context.Context, env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		s.handleJoinRoom(env)
	case EventGetDetailTripList:
		s.handleGetDetailTripList(ctx, env)
	case EventCreateDetailTrip:
		s.handleCreateDetailTrip(ctx, env)
	case EventDeleteDetailTrip:
		s.handleDeleteDetailTrip(ctx, env)
	case EventCreateExpense:
		s.handleCreateExpense(ctx, env)
	case EventGetAllExpenses, EventFilterExpensesByDay:
		s.handleExpenseList(ctx, env)
	case EventGetTotalExpense:
		s.handleTotalExpense(ctx, env)
	default:
		s.ackError(env, "unknown event: "+env.Event)
	}
}

func (s *Session) handleJoinRoom(env Envelope) {
	var req JoinRoomRequest
	if err := json.Unmarshal(env.Data, &req); err != nil || req.TripID == 0 {
		s.ackError(env, "joinRoom requires a tripId")
		return
	}

	if s.tripID != 0 {
		s.hub.Leave(s.tripID, s)
	}
	s.tripID = req.TripID
	s.hub.Join(req.TripID, s)
	s.logger.Info("room joined", "trip_id", req.TripID, "members", s.hub.Members(req.TripID))
	s.ackResult(env, req)
}

func (s *Session) handleGetDetailTripList(ctx context.Context, env Envelope) {
	if s.itinerary == nil {
		s.ackError(env, "itinerary events are not served on this endpoint")
		return
	}

	var req GetDetailTripListRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		s.ackError(env, "invalid getDetailTripList payload")
		return
	}

	waypoints, err := s.itinerary.ListDay(ctx, req.Room, req.Day)
	if err != nil {
		s.ackError(env, err.Error())
		return
	}

	reply, err := NewEnvelope(EventDetailTripList, DetailTripList{
		TripID:    req.Room,
		Day:       req.Day,
		Waypoints: waypoints,
	})
	if err != nil {
		s.ackError(env, "internal error")
		return
	}
	reply.Ack = env.Ack
	s.reply(reply)
}

func (s *Session) handleCreateDetailTrip(ctx context.Context, env Envelope) {
	if s.itinerary == nil {
		s.ackError(env, "itinerary events are not served on this endpoint")
		return
	}

	var wp model.Waypoint
	if err := json.Unmarshal(env.Data, &wp); err != nil {
		s.ackError(env, "invalid createDetailTrip payload")
		return
	}

	saved, created, err := s.itinerary.SaveWaypoint(ctx, wp)
	if err != nil {
		s.ackError(env, err.Error())
		return
	}

	s.ackResult(env, saved)

	event := EventDetailTripUpdated
	if created {
		event = EventDetailTripCreated
	}
	broadcast, err := NewEnvelope(event, saved)
	if err != nil {
		return
	}
	s.hub.Broadcast(saved.TripID, broadcast, s)
}

func (s *Session) handleDeleteDetailTrip(ctx context.Context, env Envelope) {
	if s.itinerary == nil {
		s.ackError(env, "itinerary events are not served on this endpoint")
		return
	}

	var req DeleteDetailTripRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		s.ackError(env, "invalid deleteDetailTrip payload")
		return
	}

	if err := s.itinerary.DeleteWaypoint(ctx, req.TripID, req.ID); err != nil {
		s.ackError(env, err.Error())
		return
	}
	s.ackResult(env, req)
}

func (s *Session) handleCreateExpense(ctx context.Context, env Envelope) {
	if s.expenses == nil {
		s.ackError(env, "expense events are not served on this endpoint")
		return
	}

	var req model.CreateExpenseRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		s.ackError(env, "invalid createExpense payload")
		return
	}

	expense, err := s.expenses.CreateExpense(ctx, req)
	if err != nil {
		s.ackError(env, err.Error())
		return
	}

	s.ackResult(env, expense)

	broadcast, err := NewEnvelope(EventExpenseCreated, expense)
	if err != nil {
		return
	}
	s.hub.Broadcast(expense.TripID, broadcast, s)
}

func (s *Session) handleExpenseList(ctx context.Context, env Envelope) {
	if s.expenses == nil {
		s.ackError(env, "expense events are not served on this endpoint")
		return
	}

	var req TripDayRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		s.ackError(env, "invalid expense list payload")
		return
	}

	var expenses []model.Expense
	var err error
	replyEvent := EventExpenseList
	if env.Event == EventFilterExpensesByDay {
		replyEvent = EventFilteredExpenses
		expenses, err = s.expenses.FilterByDay(ctx, req.TripID, req.Day)
	} else {
		expenses, err = s.expenses.ListExpenses(ctx, req.TripID)
	}
	if err != nil {
		s.ackError(env, err.Error())
		return
	}

	reply, err := NewEnvelope(replyEvent, expenses)
	if err != nil {
		s.ackError(env, "internal error")
		return
	}
	reply.Ack = env.Ack
	s.reply(reply)
}

func (s *Session) handleTotalExpense(ctx context.Context, env Envelope) {
	if s.expenses == nil {
		s.ackError(env, "expense events are not served on this endpoint")
		return
	}

	var req TripDayRequest
	if err := json.Unmarshal(env.Data, &req); err != nil {
		s.ackError(env, "invalid getTotalExpense payload")
		return
	}

	total, err := s.expenses.TotalExpense(ctx, req.TripID)
	if err != nil {
		s.ackError(env, err.Error())
		return
	}

	reply, err := NewEnvelope(EventTotalExpense, model.ExpenseTotal{Total: total})
	if err != nil {
		s.ackError(env, "internal error")
		return
	}
	reply.Ack = env.Ack
	s.reply(reply)
}

// ackResult replies with a [null, result] tuple when the request carried an
// outbox id; fire-and-forget requests get no reply.
func (s *Session) ackResult(env Envelope, result any) {
	if env.Ack == 0 {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		s.ackError(env, "internal error")
		return
	}
	s.sendAck(env.Ack, AckTuple{Result: raw})
}

func (s *Session) ackError(env Envelope, msg string) {
	if env.Ack == 0 {
		s.logger.Warn("rejecting room event without ack", "event", env.Event, "reason", msg)
		return
	}
	s.sendAck(env.Ack, AckTuple{Err: msg})
}

func (s *Session) sendAck(id int64, tuple AckTuple) {
	reply, err := NewEnvelope(EventAck, tuple)
	if err != nil {
		return
	}
	reply.Ack = id
	s.reply(reply)
}

func (s *Session) reply(env Envelope) {
	data, err := marshalEnvelope(env)
	if err != nil {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn("dropping reply to slow session", "event", env.Event)
	}
}

func marshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
