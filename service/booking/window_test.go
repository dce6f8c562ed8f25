package booking

import (
	"errors"
	"testing"
)

func TestNormalizeWindowUTCDefault(t *testing.T) {
	w, err := NormalizeWindow("2026-03-14", "10:00:00", "12:00:00", "")
	if err != nil {
		t.Fatalf("NormalizeWindow: %v", err)
	}
	if w.Date != "2026-03-14" || w.Start != "10:00:00" || w.End != "12:00:00" {
		t.Errorf("got %+v, want unchanged UTC window", w)
	}
}

func TestNormalizeWindowNamedTimezone(t *testing.T) {
	// 10:00 in Nairobi (UTC+3, no DST) is 07:00 UTC.
	w, err := NormalizeWindow("2026-03-14", "10:00", "12:30", "Africa/Nairobi")
	if err != nil {
		t.Fatalf("NormalizeWindow: %v", err)
	}
	if w.Start != "07:00:00" || w.End != "09:30:00" {
		t.Errorf("got start=%s end=%s, want 07:00:00 and 09:30:00", w.Start, w.End)
	}
	if w.Date != "2026-03-14" {
		t.Errorf("got date=%s, want 2026-03-14", w.Date)
	}
}

func TestNormalizeWindowDateShiftsWithConversion(t *testing.T) {
	// 01:00 in Auckland (UTC+13 in March) lands on the previous UTC day.
	w, err := NormalizeWindow("2026-03-14", "01:00", "02:00", "Pacific/Auckland")
	if err != nil {
		t.Fatalf("NormalizeWindow: %v", err)
	}
	if w.Date != "2026-03-13" {
		t.Errorf("got date=%s, want 2026-03-13 (date follows the converted start)", w.Date)
	}
	if w.Start != "12:00:00" || w.End != "13:00:00" {
		t.Errorf("got start=%s end=%s, want 12:00:00 and 13:00:00", w.Start, w.End)
	}
}

func TestNormalizeWindowRejectsBadInput(t *testing.T) {
	cases := []struct {
		name                       string
		date, start, end, timezone string
	}{
		{"unknown timezone", "2026-03-14", "10:00", "12:00", "Mars/Olympus"},
		{"bad start clock", "2026-03-14", "25:00", "12:00", ""},
		{"bad date", "14-03-2026", "10:00", "12:00", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NormalizeWindow(tc.date, tc.start, tc.end, tc.timezone); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestNormalizeWindowRejectsInvertedWindow(t *testing.T) {
	_, err := NormalizeWindow("2026-03-14", "12:00", "10:00", "")
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("got %v, want ErrInvalidWindow", err)
	}
	_, err = NormalizeWindow("2026-03-14", "12:00", "12:00", "")
	if !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("got %v for zero-length window, want ErrInvalidWindow", err)
	}
}

func TestLocalizeWindowRoundTrip(t *testing.T) {
	utc, err := NormalizeWindow("2026-03-14", "10:00", "12:30", "Africa/Nairobi")
	if err != nil {
		t.Fatalf("NormalizeWindow: %v", err)
	}
	local, err := LocalizeWindow(utc, "Africa/Nairobi")
	if err != nil {
		t.Fatalf("LocalizeWindow: %v", err)
	}
	if local.Date != "2026-03-14" || local.Start != "10:00:00" || local.End != "12:30:00" {
		t.Errorf("round trip gave %+v", local)
	}
}

func TestDurationHours(t *testing.T) {
	w := TimeWindow{Date: "2026-03-14", Start: "10:00:00", End: "12:30:00"}
	if got := w.DurationHours(); got != 2.5 {
		t.Errorf("DurationHours = %v, want 2.5", got)
	}
}
