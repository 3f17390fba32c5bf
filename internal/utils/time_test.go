package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"empty uses local", "", false},
		{"explicit local", "Local", false},
		{"utc", "UTC", false},
		{"iana", "America/New_York", false},
		{"bogus", "Mars/Olympus_Mons", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLocation(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDateFormat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-31", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-5", false},
		{"05/01/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateDateFormat(tt.in); got != tt.want {
			t.Errorf("ValidateDateFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-03-01", -1, "2024-02-29"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-03-10", -30, "2024-02-09"},
		{"2024-03-10", 0, "2024-03-10"},
	}
	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d) error: %v", tt.date, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
		}
	}

	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestTimestampRoundTripSorts(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	early := time.Date(2024, 1, 1, 10, 0, 0, 5000, loc)
	late := early.Add(1500 * time.Millisecond)

	a, b := FormatTimestamp(early), FormatTimestamp(late)
	if !(a < b) {
		t.Errorf("expected %q < %q", a, b)
	}

	parsed, err := ParseTimestamp(a)
	if err != nil {
		t.Fatalf("ParseTimestamp failed: %v", err)
	}
	if !parsed.Equal(early.Truncate(time.Microsecond)) {
		t.Errorf("round trip mismatch: %v vs %v", parsed, early)
	}

	if _, err := ParseTimestamp("2024-01-01T10:00:00+05:00"); err != nil {
		t.Errorf("RFC3339 fallback failed: %v", err)
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	instant := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
	if got := DateOf(instant.In(loc)); got != "2024-05-01" {
		t.Errorf("DateOf = %q, want 2024-05-01", got)
	}
}
