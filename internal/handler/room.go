package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tripmate/tripmate-go/internal/room"
)

// RoomHandler upgrades HTTP requests into room sessions. Each namespace
// (detail-trip, expenses) has its own hub so broadcast groups stay apart.
type RoomHandler struct {
	detailHub  *room.Hub
	expenseHub *room.Hub
	itinerary  room.ItineraryBackend
	expenses   room.ExpenseBackend
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(itinerary room.ItineraryBackend, expenses room.ExpenseBackend, logger *slog.Logger) *RoomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomHandler{
		detailHub:  room.NewHub(logger),
		expenseHub: room.NewHub(logger),
		itinerary:  itinerary,
		expenses:   expenses,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The browser clients are served from other origins; room
			// access control happens at the token guard, not here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// HandleDetailTrip handles GET /ws/detail-trip upgrades.
func (h *RoomHandler) HandleDetailTrip(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.detailHub, h.itinerary, nil)
}

// HandleExpenses handles GET /ws/expenses upgrades.
func (h *RoomHandler) HandleExpenses(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.expenseHub, nil, h.expenses)
}

func (h *RoomHandler) serve(w http.ResponseWriter, r *http.Request, hub *room.Hub, itinerary room.ItineraryBackend, expenses room.ExpenseBackend) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// The request context dies when this handler returns, but the hijacked
	// connection outlives it; the session manages its own lifetime.
	session := room.NewSession(ws, hub, itinerary, expenses, nil, h.logger)
	session.Serve(context.Background())
}
