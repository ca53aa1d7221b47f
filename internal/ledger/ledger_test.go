package ledger

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/attendance/internal/geo"
	"github.com/your-org/attendance/internal/models"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	records map[uuid.UUID]*models.AttendanceRecord
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*models.AttendanceRecord)}
}

func (m *memStore) RecordForDate(_ context.Context, identityID uuid.UUID, date time.Time) (*models.AttendanceRecord, error) {
	for _, rec := range m.records {
		if rec.IdentityID == identityID && rec.Date.Equal(date) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertRecord(_ context.Context, rec *models.AttendanceRecord) error {
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memStore) UpdateRecord(_ context.Context, rec *models.AttendanceRecord) error {
	if _, ok := m.records[rec.ID]; !ok {
		return errors.New("record not found")
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memStore) RecordsInRange(_ context.Context, identityID uuid.UUID, from, to time.Time) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range m.records {
		if rec.IdentityID != identityID {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func testLedger(store Store, at time.Time) *Ledger {
	l := New(store, 8)
	l.now = func() time.Time { return at }
	return l
}

func at(hour, min, sec int) time.Time {
	return time.Date(2024, 3, 11, hour, min, sec, 0, time.UTC)
}

func TestCheckInCreatesSingleRecord(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	l := testLedger(store, at(7, 55, 0))
	rec, err := l.CheckIn(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Status != models.StatusPresent {
		t.Errorf("Status = %v, want present", rec.Status)
	}
	if rec.CheckIn == nil {
		t.Fatal("CheckIn event not recorded")
	}
	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
}

func TestRepeatCheckInMutatesSameRecord(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	first, err := testLedger(store, at(7, 55, 0)).CheckIn(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("first CheckIn() error = %v", err)
	}

	second, err := testLedger(store, at(9, 10, 0)).CheckIn(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("second CheckIn() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second check-in created record %v, want mutation of %v", second.ID, first.ID)
	}
	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
	if second.Status != models.StatusLate {
		t.Errorf("recomputed status = %v, want late", second.Status)
	}
}

func TestCheckOutWithoutCheckInFails(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	l := testLedger(store, at(16, 0, 0))
	if _, err := l.CheckOut(context.Background(), identityID, EventInput{}); !errors.Is(err, ErrNotCheckedIn) {
		t.Errorf("CheckOut() error = %v, want ErrNotCheckedIn", err)
	}
	if len(store.records) != 0 {
		t.Errorf("record count = %d, want 0 (no mutation)", len(store.records))
	}
}

func TestCheckOutComputesWorkingHours(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	if _, err := testLedger(store, at(7, 55, 0)).CheckIn(context.Background(), identityID, EventInput{}); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	rec, err := testLedger(store, at(16, 0, 0)).CheckOut(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}
	if rec.WorkingHours == nil {
		t.Fatal("WorkingHours not set after check-out")
	}
	if math.Abs(*rec.WorkingHours-8.08) > 1e-9 {
		t.Errorf("WorkingHours = %v, want 8.08", *rec.WorkingHours)
	}
	if rec.Status != models.StatusPresent {
		t.Errorf("Status = %v, want present (07:55 check-in)", rec.Status)
	}
}

func TestLateStatusSurvivesCheckOut(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	rec, err := testLedger(store, at(9, 10, 0)).CheckIn(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.Status != models.StatusLate {
		t.Fatalf("Status = %v, want late", rec.Status)
	}

	rec, err = testLedger(store, at(17, 30, 0)).CheckOut(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("CheckOut() error = %v", err)
	}
	if rec.Status != models.StatusLate {
		t.Errorf("Status after check-out = %v, want late", rec.Status)
	}
}

func TestCheckInDerivesAddress(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	rec, err := testLedger(store, at(8, 0, 0)).CheckIn(context.Background(), identityID, EventInput{
		Location: &geo.Coordinates{Latitude: 10.762622, Longitude: 106.660172},
	})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.CheckIn.Address != "10.7626, 106.6602" {
		t.Errorf("Address = %q, want %q", rec.CheckIn.Address, "10.7626, 106.6602")
	}
	if rec.CheckIn.Latitude == nil || *rec.CheckIn.Latitude != 10.762622 {
		t.Error("Latitude not recorded")
	}
}

func TestCheckInWithoutLocationOmitsAddress(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()

	rec, err := testLedger(store, at(8, 0, 0)).CheckIn(context.Background(), identityID, EventInput{})
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if rec.CheckIn.Address != "" || rec.CheckIn.Latitude != nil {
		t.Error("location fields set without a location input")
	}
}

func TestRecordsByDateRange(t *testing.T) {
	store := newMemStore()
	mine := uuid.New()
	other := uuid.New()

	days := []time.Time{
		time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		if _, err := testLedger(store, day).CheckIn(context.Background(), mine, EventInput{}); err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
	}
	// Another identity inside the range must not leak into results.
	if _, err := testLedger(store, days[1]).CheckIn(context.Background(), other, EventInput{}); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	l := testLedger(store, days[3])
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	records, err := l.RecordsByDateRange(context.Background(), mine, from, to)
	if err != nil {
		t.Fatalf("RecordsByDateRange() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 (inclusive bounds, owner only)", len(records))
	}
	for _, rec := range records {
		if rec.IdentityID != mine {
			t.Errorf("record %v owned by %v, want %v", rec.ID, rec.IdentityID, mine)
		}
	}
}

func TestRecordsByDateRangeEmpty(t *testing.T) {
	store := newMemStore()
	l := testLedger(store, at(8, 0, 0))

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	records, err := l.RecordsByDateRange(context.Background(), uuid.New(), from, to)
	if err != nil {
		t.Fatalf("RecordsByDateRange() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}

	sum := Summarize(records)
	if sum.AverageHours != 0 {
		t.Errorf("AverageHours over empty set = %v, want 0", sum.AverageHours)
	}
	if sum.TotalDays != 0 {
		t.Errorf("TotalDays = %d, want 0", sum.TotalDays)
	}
}

func TestToday(t *testing.T) {
	store := newMemStore()
	identityID := uuid.New()
	l := testLedger(store, at(8, 0, 0))

	rec, err := l.Today(context.Background(), identityID)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if rec != nil {
		t.Fatal("Today() returned a record before any check-in")
	}

	if _, err := l.CheckIn(context.Background(), identityID, EventInput{}); err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	rec, err = l.Today(context.Background(), identityID)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if rec == nil {
		t.Fatal("Today() returned nil after check-in")
	}
}

func TestSummarize(t *testing.T) {
	h1, h2 := 8.0, 6.5
	records := []models.AttendanceRecord{
		{Status: models.StatusPresent, WorkingHours: &h1},
		{Status: models.StatusLate, WorkingHours: &h2},
		{Status: models.StatusPresent}, // open day, no hours yet
		{Status: models.StatusHalfDay},
	}

	sum := Summarize(records)
	if sum.TotalDays != 4 {
		t.Errorf("TotalDays = %d, want 4", sum.TotalDays)
	}
	if sum.Present != 2 || sum.Late != 1 || sum.HalfDay != 1 || sum.Absent != 0 {
		t.Errorf("counts = %+v, want present=2 late=1 half_day=1 absent=0", sum)
	}
	if math.Abs(sum.AverageHours-7.25) > 1e-9 {
		t.Errorf("AverageHours = %v, want 7.25", sum.AverageHours)
	}
}
