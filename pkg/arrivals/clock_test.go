package arrivals

import (
	"errors"
	"testing"
)

func TestScheduledArrival(t *testing.T) {
	tests := []struct {
		name    string
		deptime string
		enroute string
		want    string
		wantErr error
	}{
		{"morning departure", "1000", "0200", "21:00", nil},
		{"crosses midnight", "2330", "0100", "09:30", nil},
		{"midnight departure no flight time", "0000", "0000", "09:00", nil},
		{"reference hits midnight", "1500", "0930", "09:30", nil},
		{"lenient enroute hour", "1000", "1z30", "20:30", nil},
		{"extra characters ignored", "10005", "0200", "21:00", nil},
		{"letters", "abcd", "0200", NotAvailable, ErrInvalidDepartureTime},
		{"hour out of range", "2500", "0200", NotAvailable, ErrInvalidDepartureTime},
		{"minute out of range", "1060", "0200", NotAvailable, ErrInvalidDepartureTime},
		{"too short", "100", "0200", NotAvailable, ErrInvalidDepartureTime},
		{"empty", "", "0200", NotAvailable, ErrInvalidDepartureTime},
		{"enroute not numeric", "1000", "abcd", NotAvailable, ErrInvalidEnrouteTime},
		{"enroute empty", "1000", "", NotAvailable, ErrInvalidEnrouteTime},
		{"enroute missing minutes", "1000", "2", NotAvailable, ErrInvalidEnrouteTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScheduledArrival(tt.deptime, tt.enroute)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestScheduledArrivalAlwaysClockOrSentinel(t *testing.T) {
	inputs := []string{"", "0", "00", "0000", "0959", "1234", "2359", "9999", "ab12", "12ab", " 1 2", "-100", "+010"}

	for _, dep := range inputs {
		for _, enr := range inputs {
			got, err := ScheduledArrival(dep, enr)
			if got == NotAvailable {
				if err == nil {
					t.Errorf("ScheduledArrival(%q, %q): expected error with %s", dep, enr, NotAvailable)
				}
				continue
			}
			if _, ok := MinuteOfDay(got); !ok {
				t.Errorf("ScheduledArrival(%q, %q) = %q, not a valid HH:MM", dep, enr, got)
			}
		}
	}
}

func TestMinuteOfDay(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{NotAvailable, 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := MinuteOfDay(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Expected (%d, %v), got (%d, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"07", 7, true},
		{"7z", 7, true},
		{" 12", 12, true},
		{"-3", -3, true},
		{"z7", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}

	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("leadingInt(%q): expected (%d, %v), got (%d, %v)", tt.in, tt.want, tt.wantOK, got, ok)
		}
	}
}
