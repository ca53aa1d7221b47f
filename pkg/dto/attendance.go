package dto

import "github.com/google/uuid"

type RecordResponse struct {
	ID           uuid.UUID      `json:"id"`
	IdentityID   uuid.UUID      `json:"identity_id"`
	Date         string         `json:"date"`
	CheckIn      *EventResponse `json:"check_in,omitempty"`
	CheckOut     *EventResponse `json:"check_out,omitempty"`
	WorkingHours *float64       `json:"working_hours,omitempty"`
	Status       string         `json:"status"`
}

type EventResponse struct {
	At        string   `json:"at"`   // RFC3339
	Time      string   `json:"time"` // wall clock, HH:MM:SS
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	PhotoURL  string   `json:"photo_url,omitempty"`
}

type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int              `json:"total"`
}

type SummaryResponse struct {
	TotalDays    int     `json:"total_days"`
	Present      int     `json:"present"`
	Late         int     `json:"late"`
	Absent       int     `json:"absent"`
	HalfDay      int     `json:"half_day"`
	AverageHours float64 `json:"average_hours"`
}

// WSEvent is a WebSocket message for real-time attendance delivery.
type WSEvent struct {
	Type       string         `json:"type"` // checked_in, checked_out
	IdentityID uuid.UUID      `json:"identity_id"`
	Data       RecordResponse `json:"data"`
}
