// Package ledger implements the attendance record lifecycle: check-in,
// check-out, range queries, and derived summaries. It enforces the
// one-record-per-identity-per-day rule.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/attendance/internal/geo"
	"github.com/your-org/attendance/internal/models"
)

var (
	// ErrNotCheckedIn is returned by CheckOut when today has no
	// check-in to close out.
	ErrNotCheckedIn = errors.New("no check-in recorded for today")
)

// Store is the persistence surface the ledger needs.
type Store interface {
	RecordForDate(ctx context.Context, identityID uuid.UUID, date time.Time) (*models.AttendanceRecord, error)
	InsertRecord(ctx context.Context, rec *models.AttendanceRecord) error
	UpdateRecord(ctx context.Context, rec *models.AttendanceRecord) error
	RecordsInRange(ctx context.Context, identityID uuid.UUID, from, to time.Time) ([]models.AttendanceRecord, error)
}

// EventInput carries the optional inputs of a check-in or check-out.
// Both degrade gracefully: a missing location just omits the address,
// a missing photo just leaves the key empty.
type EventInput struct {
	Location *geo.Coordinates
	PhotoKey string
}

type Ledger struct {
	store         Store
	lateAfterHour int
	now           func() time.Time
}

func New(store Store, lateAfterHour int) *Ledger {
	return &Ledger{
		store:         store,
		lateAfterHour: lateAfterHour,
		now:           time.Now,
	}
}

func (l *Ledger) buildEvent(at time.Time, in EventInput) *models.AttendanceEvent {
	ev := &models.AttendanceEvent{At: at, PhotoKey: in.PhotoKey}
	if in.Location != nil {
		lat, lng := in.Location.Latitude, in.Location.Longitude
		ev.Latitude = &lat
		ev.Longitude = &lng
		ev.Address = geo.FormatAddress(*in.Location)
	}
	return ev
}

// CheckIn records the identity's check-in for today. A repeat check-in
// on the same day overwrites the existing check-in event and recomputes
// the status on the same record; it never creates a second record.
func (l *Ledger) CheckIn(ctx context.Context, identityID uuid.UUID, in EventInput) (*models.AttendanceRecord, error) {
	now := l.now()
	today := models.DateOf(now)

	rec, err := l.store.RecordForDate(ctx, identityID, today)
	if err != nil {
		return nil, fmt.Errorf("look up today's record: %w", err)
	}

	event := l.buildEvent(now, in)
	status := models.StatusForCheckIn(now, l.lateAfterHour)

	if rec != nil {
		rec.CheckIn = event
		rec.Status = status
		if err := l.store.UpdateRecord(ctx, rec); err != nil {
			return nil, fmt.Errorf("update record: %w", err)
		}
		return rec, nil
	}

	rec = &models.AttendanceRecord{
		ID:         uuid.New(),
		IdentityID: identityID,
		Date:       today,
		CheckIn:    event,
		Status:     status,
	}
	if err := l.store.InsertRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// CheckOut closes today's record and computes the working hours from
// the stored check-in timestamp. Fails with ErrNotCheckedIn when there
// is no record for today or the record has no check-in.
func (l *Ledger) CheckOut(ctx context.Context, identityID uuid.UUID, in EventInput) (*models.AttendanceRecord, error) {
	now := l.now()
	today := models.DateOf(now)

	rec, err := l.store.RecordForDate(ctx, identityID, today)
	if err != nil {
		return nil, fmt.Errorf("look up today's record: %w", err)
	}
	if rec == nil || rec.CheckIn == nil {
		return nil, ErrNotCheckedIn
	}

	rec.CheckOut = l.buildEvent(now, in)
	hours := models.WorkingHoursBetween(rec.CheckIn.At, now)
	rec.WorkingHours = &hours

	if err := l.store.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

// Today returns today's record for the identity, or nil when the
// identity has not checked in yet.
func (l *Ledger) Today(ctx context.Context, identityID uuid.UUID) (*models.AttendanceRecord, error) {
	return l.store.RecordForDate(ctx, identityID, models.DateOf(l.now()))
}

// RecordsByDateRange returns the identity's records with
// from <= date <= to, both bounds inclusive.
func (l *Ledger) RecordsByDateRange(ctx context.Context, identityID uuid.UUID, from, to time.Time) ([]models.AttendanceRecord, error) {
	return l.store.RecordsInRange(ctx, identityID, models.DateOf(from), models.DateOf(to))
}

// Summary aggregates a queried record set: counts per status and the
// arithmetic mean of the defined working hours.
type Summary struct {
	TotalDays    int     `json:"total_days"`
	Present      int     `json:"present"`
	Late         int     `json:"late"`
	Absent       int     `json:"absent"`
	HalfDay      int     `json:"half_day"`
	AverageHours float64 `json:"average_hours"`
}

// Summarize computes a Summary over records. AverageHours covers only
// records whose working hours are defined and is 0 when none are.
func Summarize(records []models.AttendanceRecord) Summary {
	sum := Summary{TotalDays: len(records)}

	var total float64
	var counted int
	for _, rec := range records {
		switch rec.Status {
		case models.StatusPresent:
			sum.Present++
		case models.StatusLate:
			sum.Late++
		case models.StatusAbsent:
			sum.Absent++
		case models.StatusHalfDay:
			sum.HalfDay++
		}
		if rec.WorkingHours != nil {
			total += *rec.WorkingHours
			counted++
		}
	}
	if counted > 0 {
		sum.AverageHours = total / float64(counted)
	}
	return sum
}
