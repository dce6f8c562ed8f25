package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/recipemania/recipe-mania-server/cmd/models"
)

func window(date, start, end string) TimeWindow {
	return TimeWindow{Date: date, Start: start, End: end}
}

func TestResidualWindows(t *testing.T) {
	slot := window("2026-03-16", "09:00:00", "17:00:00")

	cases := []struct {
		name string
		req  TimeWindow
		want []TimeWindow
	}{
		{
			"exact match leaves nothing",
			window("2026-03-16", "09:00:00", "17:00:00"),
			nil,
		},
		{
			"booking at slot start leaves after fragment",
			window("2026-03-16", "09:00:00", "11:00:00"),
			[]TimeWindow{window("2026-03-16", "11:00:00", "17:00:00")},
		},
		{
			"booking at slot end leaves before fragment",
			window("2026-03-16", "15:00:00", "17:00:00"),
			[]TimeWindow{window("2026-03-16", "09:00:00", "15:00:00")},
		},
		{
			"booking in the middle leaves both fragments",
			window("2026-03-16", "11:00:00", "13:00:00"),
			[]TimeWindow{
				window("2026-03-16", "09:00:00", "11:00:00"),
				window("2026-03-16", "13:00:00", "17:00:00"),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResidualWindows(slot, tc.req)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d residuals %v, want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("residual %d = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

// The residuals and the booked window must tile the original slot exactly,
// with no gap or overlap at the shared boundaries.
func TestResidualWindowsPreserveCoverage(t *testing.T) {
	slot := window("2026-03-16", "09:00:00", "17:00:00")
	req := window("2026-03-16", "11:30:00", "14:15:00")

	residuals := ResidualWindows(slot, req)
	if len(residuals) != 2 {
		t.Fatalf("got %d residuals, want 2", len(residuals))
	}
	before, after := residuals[0], residuals[1]
	if before.Start != slot.Start || before.End != req.Start {
		t.Errorf("before fragment %+v does not abut the booking", before)
	}
	if after.Start != req.End || after.End != slot.End {
		t.Errorf("after fragment %+v does not abut the booking", after)
	}
}

func TestResolveRate(t *testing.T) {
	online := 20.0
	zero := 0.0
	slot := &models.Availability{OnlineRate: &online}

	rate, err := ResolveRate(slot, models.ServiceTypeOnline)
	if err != nil || rate != 20.0 {
		t.Errorf("ResolveRate online = %v, %v; want 20, nil", rate, err)
	}

	if _, err := ResolveRate(slot, models.ServiceTypeOffline); !errors.Is(err, ErrNoRateConfigured) {
		t.Errorf("missing offline rate: got %v, want ErrNoRateConfigured", err)
	}

	slot.OfflineRate = &zero
	if _, err := ResolveRate(slot, models.ServiceTypeOffline); !errors.Is(err, ErrNoRateConfigured) {
		t.Errorf("zero offline rate: got %v, want ErrNoRateConfigured", err)
	}
}

func TestPrice(t *testing.T) {
	weekday := window("2026-03-16", "10:00:00", "12:00:00") // a Monday
	saturday := window("2026-03-14", "10:00:00", "12:00:00")

	cases := []struct {
		name string
		rate float64
		w    TimeWindow
		want float64
	}{
		{"weekday two hours", 20, weekday, 40},
		{"saturday applies surcharge", 20, saturday, 50},
		{"fractional hours", 20, window("2026-03-16", "10:00:00", "11:30:00"), 30},
		{"sunday surcharge on fraction", 20, window("2026-03-15", "10:00:00", "11:30:00"), 37.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Price(tc.rate, tc.w)
			if err != nil {
				t.Fatalf("Price: %v", err)
			}
			if got != tc.want {
				t.Errorf("Price = %v, want %v", got, tc.want)
			}
		})
	}

	if _, err := Price(20, window("2026-03-16", "12:00:00", "12:00:00")); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration: got %v, want ErrInvalidDuration", err)
	}
}

func TestAmountInCents(t *testing.T) {
	if got := AmountInCents(37.5); got != 3750 {
		t.Errorf("AmountInCents(37.5) = %d, want 3750", got)
	}
	if got := AmountInCents(50); got != 5000 {
		t.Errorf("AmountInCents(50) = %d, want 5000", got)
	}
}

func TestCheckCancelPolicy(t *testing.T) {
	now := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		start   time.Time
		role    string
		wantErr error
	}{
		{"four hours ahead allowed", now.Add(4 * time.Hour), "user", nil},
		{"exactly three hours allowed", now.Add(3 * time.Hour), "user", nil},
		{"two hours ahead rejected", now.Add(2 * time.Hour), "user", ErrTooLateToCancel},
		{"fractional lead truncates to whole hours", now.Add(2*time.Hour + 59*time.Minute), "chef", ErrTooLateToCancel},
		{"past start rejected", now.Add(-1 * time.Hour), "user", ErrTooLateToCancel},
		{"admin bypasses policy", now.Add(30 * time.Minute), "admin", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCancelPolicy(tc.start, now, tc.role)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckConfirmable(t *testing.T) {
	if err := CheckConfirmable(models.BookingStatusPending); err != nil {
		t.Errorf("pending: got %v, want nil", err)
	}
	if err := CheckConfirmable(models.BookingStatusConfirmed); !errors.Is(err, ErrNotConfirmable) {
		t.Errorf("confirmed: got %v, want ErrNotConfirmable", err)
	}
	if err := CheckConfirmable(models.BookingStatusCancelled); !errors.Is(err, ErrNotConfirmable) {
		t.Errorf("cancelled: got %v, want ErrNotConfirmable", err)
	}
}

func TestRestoredSlot(t *testing.T) {
	b := &models.Booking{
		UserID:      4,
		ChefID:      7,
		BookingDate: "2026-03-16",
		StartTime:   "11:00:00",
		EndTime:     "13:00:00",
		ServiceType: models.ServiceTypeOnline,
		Rate:        20,
		Status:      models.BookingStatusCancelled,
	}

	slot := RestoredSlot(b)
	if slot.ChefID != 7 || slot.AvailableDate != "2026-03-16" ||
		slot.StartTime != "11:00:00" || slot.EndTime != "13:00:00" {
		t.Errorf("restored slot %+v does not match the booking window", slot)
	}
	if slot.OnlineRate == nil || *slot.OnlineRate != 20 {
		t.Errorf("online rate not restored: %+v", slot.OnlineRate)
	}
	if slot.OfflineRate != nil {
		t.Errorf("offline rate should stay unset, got %v", *slot.OfflineRate)
	}

	b.ServiceType = models.ServiceTypeOffline
	slot = RestoredSlot(b)
	if slot.OfflineRate == nil || *slot.OfflineRate != 20 {
		t.Errorf("offline rate not restored: %+v", slot.OfflineRate)
	}
	if slot.OnlineRate != nil {
		t.Errorf("online rate should stay unset, got %v", *slot.OnlineRate)
	}
}
