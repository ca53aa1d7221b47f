package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Status classifies one day's attendance. Assigned at check-in time and
// never revised by check-out.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent, StatusHalfDay:
		return true
	}
	return false
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid attendance status %q", raw)
	}
	return s, nil
}

// StatusForCheckIn derives the day's status from the check-in instant:
// late when the local hour (0-23) is strictly greater than lateAfterHour.
func StatusForCheckIn(at time.Time, lateAfterHour int) Status {
	if at.Hour() > lateAfterHour {
		return StatusLate
	}
	return StatusPresent
}

// AttendanceEvent is a single check-in or check-out action. The timestamp
// is the authoritative value; display times are derived from it.
type AttendanceEvent struct {
	At        time.Time `json:"at" db:"at"`
	Latitude  *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64  `json:"longitude,omitempty" db:"longitude"`
	Address   string    `json:"address,omitempty" db:"address"`
	PhotoKey  string    `json:"-" db:"photo_key"`
}

// TimeOfDay renders the event's wall-clock time.
func (e AttendanceEvent) TimeOfDay() string {
	return e.At.Format("15:04:05")
}

// AttendanceRecord is one calendar day's attendance entry for one identity.
// At most one record exists per (identity, date).
type AttendanceRecord struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	IdentityID   uuid.UUID        `json:"identity_id" db:"identity_id"`
	Date         time.Time        `json:"date" db:"date"`
	CheckIn      *AttendanceEvent `json:"check_in,omitempty"`
	CheckOut     *AttendanceEvent `json:"check_out,omitempty"`
	WorkingHours *float64         `json:"working_hours,omitempty" db:"working_hours"`
	Status       Status           `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// DateOf truncates t to its calendar date, anchored at UTC midnight so
// that date equality and range comparisons are stable.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WorkingHoursBetween is the check-in to check-out delta in hours,
// rounded to 2 decimals.
func WorkingHoursBetween(checkIn, checkOut time.Time) float64 {
	return math.Round(checkOut.Sub(checkIn).Hours()*100) / 100
}
