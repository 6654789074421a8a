package room

import (
	"log/slog"
	"sync"
)

// Hub tracks which sessions are members of which trip's room and fans
// broadcasts out to them. One hub per namespace (detail-trip, expenses) so
// membership groups stay isolated.
type Hub struct {
	mu     sync.Mutex
	rooms  map[int64]map[*Session]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[int64]map[*Session]struct{}),
		logger: logger,
	}
}

// Join adds a session to a trip's room.
func (h *Hub) Join(tripID int64, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[tripID]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[tripID] = members
	}
	members[s] = struct{}{}
}

// Leave removes a session from a trip's room. Empty rooms are dropped.
func (h *Hub) Leave(tripID int64, s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[tripID]
	if !ok {
		return
	}
	delete(members, s)
	if len(members) == 0 {
		delete(h.rooms, tripID)
	}
}

// Members returns the number of sessions in a trip's room.
func (h *Hub) Members(tripID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[tripID])
}

// Broadcast delivers an envelope to every member of a trip's room except
// the sender. A member whose send buffer is full misses the broadcast; the
// backend stays the source of truth for eventual correctness.
func (h *Hub) Broadcast(tripID int64, env Envelope, except *Session) {
	data, err := marshalEnvelope(env)
	if err != nil {
		h.logger.Warn("dropping unencodable broadcast", "event", env.Event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for member := range h.rooms[tripID] {
		if member == except {
			continue
		}
		select {
		case member.send <- data:
		default:
			h.logger.Warn("slow room member missed broadcast", "event", env.Event, "trip_id", tripID)
		}
	}
}
