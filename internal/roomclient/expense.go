package roomclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/room"
)

// ExpenseClient is the expense-room counterpart of the Synchronizer: one
// connection to a trip's expenses namespace for recording and reading
// shared costs.
type ExpenseClient struct {
	*conn
	tripID int64
}

// NewExpenseClient creates a client for the trip's expense room.
func NewExpenseClient(url, token string, tripID int64, settings *Settings, logger *slog.Logger) *ExpenseClient {
	c := &ExpenseClient{
		conn:   newConn(url, token, settings, logger),
		tripID: tripID,
	}
	c.conn.onEvent = c.handleEvent
	return c
}

// Join connects and announces room membership.
func (c *ExpenseClient) Join(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return err
	}
	if _, err := c.requestAck(ctx, room.EventJoinRoom, room.JoinRoomRequest{TripID: c.tripID}); err != nil {
		c.close()
		return fmt.Errorf("join expense room %d: %w", c.tripID, err)
	}
	c.state.Store(int32(StateJoined))
	return nil
}

// Close tears down the expense room connection.
func (c *ExpenseClient) Close() {
	c.close()
}

// CreateExpense records a shared cost. Required fields are validated by the
// room; a rejection comes back as the ack tuple's error element.
func (c *ExpenseClient) CreateExpense(ctx context.Context, req model.CreateExpenseRequest) (model.Expense, error) {
	req.TripID = c.tripID
	result, err := c.requestAck(ctx, room.EventCreateExpense, req)
	if err != nil {
		return model.Expense{}, err
	}
	var expense model.Expense
	if err := json.Unmarshal(result, &expense); err != nil {
		return model.Expense{}, fmt.Errorf("decode created expense: %w", err)
	}
	return expense, nil
}

// AllExpenses fetches every expense recorded for the trip.
func (c *ExpenseClient) AllExpenses(ctx context.Context) ([]model.Expense, error) {
	return c.expenseList(ctx, room.EventGetAllExpenses, room.TripDayRequest{TripID: c.tripID})
}

// FilterByDay fetches the expenses for one day of the trip.
func (c *ExpenseClient) FilterByDay(ctx context.Context, day int) ([]model.Expense, error) {
	return c.expenseList(ctx, room.EventFilterExpensesByDay, room.TripDayRequest{TripID: c.tripID, Day: day})
}

// TotalExpense fetches the trip-wide expense sum. The room answers with a
// totalExpense envelope correlated by the request id.
func (c *ExpenseClient) TotalExpense(ctx context.Context) (int64, error) {
	reply, err := c.request(ctx, room.EventGetTotalExpense, room.TripDayRequest{TripID: c.tripID})
	if err != nil {
		return 0, err
	}
	if err := rejectionError(reply); err != nil {
		return 0, err
	}
	var total model.ExpenseTotal
	if err := json.Unmarshal(reply.Data, &total); err != nil {
		return 0, fmt.Errorf("decode %s: %w", reply.Event, err)
	}
	return total.Total, nil
}

// expenseList issues a list query; the room answers with an expenseList or
// filteredExpenses envelope correlated by the request id.
func (c *ExpenseClient) expenseList(ctx context.Context, event string, req room.TripDayRequest) ([]model.Expense, error) {
	reply, err := c.request(ctx, event, req)
	if err != nil {
		return nil, err
	}
	if err := rejectionError(reply); err != nil {
		return nil, err
	}
	var expenses []model.Expense
	if err := json.Unmarshal(reply.Data, &expenses); err != nil {
		return nil, fmt.Errorf("decode %s: %w", reply.Event, err)
	}
	return expenses, nil
}

func (c *ExpenseClient) handleEvent(env room.Envelope) {
	switch env.Event {
	case room.EventExpenseCreated:
		c.logger.Info("expense recorded by another participant")
	default:
		c.logger.Debug("ignoring expense room event", "event", env.Event)
	}
}
