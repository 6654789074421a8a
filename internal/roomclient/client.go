// Package roomclient maintains the live session with a trip's collaboration
// room and reconciles room events with the local itinerary store.
package roomclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripmate/tripmate-go/internal/room"
)

// State is the synchronizer's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

var (
	// ErrClosed is returned for requests made after the connection ended.
	ErrClosed = errors.New("roomclient: connection closed")
	// ErrAckTimeout is returned when the room does not acknowledge in time.
	ErrAckTimeout = errors.New("roomclient: acknowledgement timed out")
)

// Settings tunes the room connection.
type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	AckTimeout       time.Duration
	// Dial-time hardening: up to DialAttempts tries spaced DialBackoff apart.
	// There is no mid-session reconnect; a dropped connection surfaces as
	// StateDisconnected and an empty itinerary.
	DialAttempts int
	DialBackoff  time.Duration
}

// DefaultSettings returns the settings used when none are provided.
func DefaultSettings() *Settings {
	return &Settings{
		HandshakeTimeout: 2 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReadTimeout:      15 * time.Second,
		PingInterval:     5 * time.Second,
		AckTimeout:       10 * time.Second,
		DialAttempts:     3,
		DialBackoff:      time.Second,
	}
}

// conn is the shared websocket machinery under the itinerary synchronizer
// and the expense client: a single connection with a write lock, a read
// pump, ping keepalive, and an outbox of requests awaiting acknowledgement.
type conn struct {
	url      string
	token    string
	settings *Settings
	logger   *slog.Logger

	ws      *websocket.Conn
	writeMu sync.Mutex

	state atomic.Int32

	pendingMu sync.Mutex
	nextAck   int64
	pending   map[int64]chan room.Envelope

	// onEvent receives broadcasts and other envelopes not correlated with a
	// pending request. Called from the read pump goroutine.
	onEvent func(room.Envelope)

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(url, token string, settings *Settings, logger *slog.Logger) *conn {
	if settings == nil {
		settings = DefaultSettings()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &conn{
		url:      url,
		token:    token,
		settings: settings,
		logger:   logger,
		pending:  make(map[int64]chan room.Envelope),
		done:     make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *conn) State() State {
	return State(c.state.Load())
}

// dial establishes the websocket with bounded retry and starts the pumps.
func (c *conn) dial(ctx context.Context) error {
	c.state.Store(int32(StateConnecting))

	dialer := websocket.Dialer{HandshakeTimeout: c.settings.HandshakeTimeout}
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	var ws *websocket.Conn
	var err error
	for attempt := 1; ; attempt++ {
		ws, _, err = dialer.DialContext(ctx, c.url, header)
		if err == nil {
			break
		}
		c.logger.Warn("room dial failed", "url", c.url, "attempt", attempt, "error", err)
		if attempt >= c.settings.DialAttempts {
			c.state.Store(int32(StateDisconnected))
			return fmt.Errorf("dial room: %w", err)
		}
		select {
		case <-ctx.Done():
			c.state.Store(int32(StateDisconnected))
			return ctx.Err()
		case <-time.After(c.settings.DialBackoff):
		}
	}

	c.ws = ws
	ws.SetReadDeadline(time.Now().Add(c.settings.ReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(c.settings.ReadTimeout))
	})

	go c.readPump()
	go c.pingPump()
	return nil
}

// close tears the connection down. Only future deliveries stop; requests
// already sent are not cancelled.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateDisconnected))
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
		c.failPending()
	})
}

func (c *conn) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *conn) send(env room.Envelope) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// emit sends a fire-and-forget event.
func (c *conn) emit(event string, payload any) error {
	env, err := room.NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return c.send(env)
}

// request sends an event carrying an outbox id and waits for the correlated
// reply envelope.
func (c *conn) request(ctx context.Context, event string, payload any) (room.Envelope, error) {
	env, err := room.NewEnvelope(event, payload)
	if err != nil {
		return room.Envelope{}, err
	}

	ch := make(chan room.Envelope, 1)
	c.pendingMu.Lock()
	c.nextAck++
	id := c.nextAck
	c.pending[id] = ch
	c.pendingMu.Unlock()
	env.Ack = id

	if err := c.send(env); err != nil {
		c.discardPending(id)
		return room.Envelope{}, err
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return room.Envelope{}, ErrClosed
		}
		return reply, nil
	case <-time.After(c.settings.AckTimeout):
		c.discardPending(id)
		return room.Envelope{}, ErrAckTimeout
	case <-ctx.Done():
		c.discardPending(id)
		return room.Envelope{}, ctx.Err()
	}
}

// requestAck is request for events whose reply is an [error, result] ack
// tuple. A non-empty first element is a failure.
func (c *conn) requestAck(ctx context.Context, event string, payload any) (json.RawMessage, error) {
	reply, err := c.request(ctx, event, payload)
	if err != nil {
		return nil, err
	}
	var tuple room.AckTuple
	if err := json.Unmarshal(reply.Data, &tuple); err != nil {
		return nil, fmt.Errorf("decode %s ack: %w", event, err)
	}
	if tuple.Failed() {
		return nil, fmt.Errorf("%s rejected: %s", event, tuple.Err)
	}
	return tuple.Result, nil
}

// rejectionError inspects a correlated reply that should have been a named
// envelope. A failed request comes back as an ack envelope instead, carrying
// the rejection reason in its tuple.
func rejectionError(reply room.Envelope) error {
	if reply.Event != room.EventAck {
		return nil
	}
	var tuple room.AckTuple
	if err := json.Unmarshal(reply.Data, &tuple); err != nil {
		return fmt.Errorf("decode rejection: %w", err)
	}
	if tuple.Failed() {
		return errors.New(tuple.Err)
	}
	return nil
}

func (c *conn) discardPending(id int64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *conn) resolvePending(env room.Envelope) bool {
	c.pendingMu.Lock()
	ch, ok := c.pending[env.Ack]
	if ok {
		delete(c.pending, env.Ack)
	}
	c.pendingMu.Unlock()
	if ok {
		ch <- env
	}
	return ok
}

func (c *conn) readPump() {
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.ws.SetReadDeadline(time.Now().Add(c.settings.ReadTimeout))
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			// Transport errors surface only as an absence of data.
			c.logger.Warn("room connection lost", "error", err)
			return
		}

		var env room.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.logger.Warn("dropping malformed room message", "error", err)
			continue
		}

		if env.Ack != 0 && c.resolvePending(env) {
			continue
		}
		if c.onEvent != nil {
			c.onEvent(env)
		}
	}
}

func (c *conn) pingPump() {
	ticker := time.NewTicker(c.settings.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.ws.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.close()
				return
			}
		}
	}
}
