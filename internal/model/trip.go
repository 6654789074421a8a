package model

import "time"

// DateLayout is the wire format for trip calendar dates.
const DateLayout = "2006-01-02"

// Trip represents a planned journey in the database. Trips are owned by the
// backend; the itinerary core only ever reads them.
type Trip struct {
	ID        int64
	Name      string
	StartDate string // "2006-01-02", inclusive
	EndDate   string // "2006-01-02", inclusive
	StartTime string
	EndTime   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateTripRequest represents a trip update submitted through the REST API.
type UpdateTripRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// TripResponse represents trip metadata returned by the REST API.
type TripResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// ParseDate parses a calendar date in the trip wire format.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
