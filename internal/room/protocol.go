// Package room implements the server side of the trip collaboration rooms:
// the wire protocol, the per-trip membership hub, and the WebSocket sessions
// that dispatch room events.
package room

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tripmate/tripmate-go/internal/model"
)

// Room event names. Itinerary events mirror the detail-trip namespace,
// expense events the expenses namespace.
const (
	EventJoinRoom = "joinRoom"
	EventAck      = "ack"

	EventGetDetailTripList = "getDetailTripList"
	EventDetailTripList    = "detailTripList"
	EventCreateDetailTrip  = "createDetailTrip"
	EventDeleteDetailTrip  = "deleteDetailTrip"
	EventDetailTripCreated = "detailTripCreated"
	EventDetailTripUpdated = "detailTripUpdated"

	EventCreateExpense       = "createExpense"
	EventExpenseCreated      = "expenseCreated"
	EventGetAllExpenses      = "getAllExpenses"
	EventExpenseList         = "expenseList"
	EventGetTotalExpense     = "getTotalExpense"
	EventTotalExpense        = "totalExpense"
	EventFilterExpensesByDay = "filterExpensesByDay"
	EventFilteredExpenses    = "filteredExpenses"
)

// Envelope frames every room message. Ack is a client-chosen request id;
// when non-zero the server replies with an EventAck envelope carrying the
// same id and an [error, result] tuple as data.
type Envelope struct {
	Event string          `json:"event"`
	Ack   int64           `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into a framed room message.
func NewEnvelope(event string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: raw}, nil
}

// AckTuple is the [error, result] pair carried by an ack. A non-empty first
// element means the request failed; callers must not interpret the result
// in that case.
type AckTuple struct {
	Err    string
	Result json.RawMessage
}

// MarshalJSON encodes the tuple as a two-element array, null first element
// on success.
func (t AckTuple) MarshalJSON() ([]byte, error) {
	var first any
	if t.Err != "" {
		first = t.Err
	}
	result := t.Result
	if result == nil {
		result = json.RawMessage("null")
	}
	return json.Marshal([]any{first, result})
}

// UnmarshalJSON decodes the two-element ack array.
func (t *AckTuple) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return errors.New("room: ack tuple must have two elements")
	}
	if string(parts[0]) != "null" {
		if err := json.Unmarshal(parts[0], &t.Err); err != nil {
			return err
		}
	}
	t.Result = parts[1]
	return nil
}

// Failed reports whether the ack signals a failure.
func (t AckTuple) Failed() bool {
	return t.Err != ""
}

// JoinRoomRequest carries the trip id whose room the client joins.
type JoinRoomRequest struct {
	TripID int64 `json:"tripId"`
}

// GetDetailTripListRequest asks for the full waypoint list of one day.
// The room field carries the trip id, matching the legacy wire shape.
type GetDetailTripListRequest struct {
	Room int64 `json:"room"`
	Day  int   `json:"day"`
}

// DeleteDetailTripRequest announces a waypoint removal.
type DeleteDetailTripRequest struct {
	ID     string `json:"id"`
	TripID int64  `json:"tripId"`
	Day    int    `json:"day"`
}

// TripDayRequest addresses a whole trip or one of its days; day 0 means the
// whole trip (getAllExpenses, getTotalExpense).
type TripDayRequest struct {
	TripID int64 `json:"tripId"`
	Day    int   `json:"day,omitempty"`
}

// DetailTripList is the full-replace response for one day's waypoints.
type DetailTripList struct {
	TripID    int64            `json:"tripId"`
	Day       int              `json:"day"`
	Waypoints []model.Waypoint `json:"detailTripList"`
}
