package models

import (
	"testing"
	"time"
)

func TestStatusForCheckIn(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want Status
	}{
		{
			name: "before threshold",
			at:   time.Date(2024, 3, 11, 7, 55, 0, 0, time.UTC),
			want: StatusPresent,
		},
		{
			name: "inside threshold hour",
			at:   time.Date(2024, 3, 11, 8, 59, 59, 0, time.UTC),
			want: StatusPresent,
		},
		{
			name: "after threshold",
			at:   time.Date(2024, 3, 11, 9, 10, 0, 0, time.UTC),
			want: StatusLate,
		},
		{
			name: "midnight",
			at:   time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			want: StatusPresent,
		},
		{
			name: "end of day",
			at:   time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC),
			want: StatusLate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForCheckIn(tt.at, 8); got != tt.want {
				t.Errorf("StatusForCheckIn(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"present", "late", "absent", "half_day"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) error = %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "PRESENT", "halfday", "vacation"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) error = nil, want error", invalid)
		}
	}
}

func TestWorkingHoursBetween(t *testing.T) {
	tests := []struct {
		name    string
		in, out time.Time
		want    float64
	}{
		{
			name: "regular day",
			in:   time.Date(2024, 3, 11, 7, 55, 0, 0, time.UTC),
			out:  time.Date(2024, 3, 11, 16, 0, 0, 0, time.UTC),
			want: 8.08,
		},
		{
			name: "exact hours",
			in:   time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
			out:  time.Date(2024, 3, 11, 17, 0, 0, 0, time.UTC),
			want: 8,
		},
		{
			name: "short day",
			in:   time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC),
			out:  time.Date(2024, 3, 11, 12, 30, 0, 0, time.UTC),
			want: 3.5,
		},
		{
			name: "spans midnight",
			in:   time.Date(2024, 3, 11, 22, 0, 0, 0, time.UTC),
			out:  time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC),
			want: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WorkingHoursBetween(tt.in, tt.out); got != tt.want {
				t.Errorf("WorkingHoursBetween() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	d := DateOf(time.Date(2024, 3, 11, 16, 45, 12, 0, time.UTC))
	want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("DateOf() = %v, want %v", d, want)
	}
}
