package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/recipemania/recipe-mania-server/cmd/models"
	"gorm.io/gorm"
)

// memoryStore is an in-memory SlotStore for driving the reconciler's
// store-level flows. The fake serializes calls the way the row lock does
// in the gorm implementation.
type memoryStore struct {
	slots    []models.Availability
	bookings map[uint]*models.Booking
	nextID   uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{bookings: make(map[uint]*models.Booking)}
}

func (s *memoryStore) FindCoveringSlot(chefID uint, date, start, end string) (*models.Availability, error) {
	for i := range s.slots {
		slot := s.slots[i]
		if slot.ChefID == chefID && slot.AvailableDate == date &&
			slot.StartTime <= start && slot.EndTime >= end {
			found := slot
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memoryStore) DeleteSlot(chefID uint, date, start, end string) error {
	kept := s.slots[:0]
	for _, slot := range s.slots {
		if slot.ChefID == chefID && slot.AvailableDate == date &&
			slot.StartTime == start && slot.EndTime == end {
			continue
		}
		kept = append(kept, slot)
	}
	s.slots = kept
	return nil
}

func (s *memoryStore) InsertSlot(slot *models.Availability) error {
	s.slots = append(s.slots, *slot)
	return nil
}

func (s *memoryStore) InsertBooking(b *models.Booking) error {
	s.nextID++
	b.ID = s.nextID
	stored := *b
	s.bookings[b.ID] = &stored
	return nil
}

func (s *memoryStore) FindBooking(id uint) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := *b
	return &found, nil
}

func (s *memoryStore) SaveBooking(b *models.Booking) error {
	stored := *b
	s.bookings[b.ID] = &stored
	return nil
}

func rates(online, offline float64) (*float64, *float64) {
	var o, f *float64
	if online > 0 {
		o = &online
	}
	if offline > 0 {
		f = &offline
	}
	return o, f
}

func seedSlot(s *memoryStore, chefID uint, date, start, end string, online, offline float64) {
	o, f := rates(online, offline)
	s.slots = append(s.slots, models.Availability{
		ChefID:        chefID,
		AvailableDate: date,
		StartTime:     start,
		EndTime:       end,
		OnlineRate:    o,
		OfflineRate:   f,
		Timezone:      "UTC",
	})
}

func TestCreateBookingConsumesSlot(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "17:00:00", 20, 30)

	b, err := createBooking(store, 4, 7, window("2026-03-16", "11:00:00", "13:00:00"), models.ServiceTypeOnline)
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}
	if b.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.Rate != 20 {
		t.Errorf("rate = %v, want the slot's online rate 20", b.Rate)
	}

	if len(store.slots) != 2 {
		t.Fatalf("got %d slots after booking, want 2 residuals: %+v", len(store.slots), store.slots)
	}
	before, after := store.slots[0], store.slots[1]
	if before.StartTime != "09:00:00" || before.EndTime != "11:00:00" {
		t.Errorf("before residual [%s, %s), want [09:00:00, 11:00:00)", before.StartTime, before.EndTime)
	}
	if after.StartTime != "13:00:00" || after.EndTime != "17:00:00" {
		t.Errorf("after residual [%s, %s), want [13:00:00, 17:00:00)", after.StartTime, after.EndTime)
	}
	// Residuals keep both of the original slot's rates.
	for _, slot := range store.slots {
		if slot.OnlineRate == nil || *slot.OnlineRate != 20 || slot.OfflineRate == nil || *slot.OfflineRate != 30 {
			t.Errorf("residual lost a rate: %+v", slot)
		}
	}
}

func TestCreateBookingFullMatchLeavesNoSlot(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "11:00:00", 20, 0)

	if _, err := createBooking(store, 4, 7, window("2026-03-16", "09:00:00", "11:00:00"), models.ServiceTypeOnline); err != nil {
		t.Fatalf("createBooking: %v", err)
	}
	if len(store.slots) != 0 {
		t.Errorf("got %d slots after full-match booking, want 0", len(store.slots))
	}
}

func TestCreateBookingNoCoveringSlot(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "11:00:00", 20, 0)

	_, err := createBooking(store, 4, 7, window("2026-03-16", "10:00:00", "12:00:00"), models.ServiceTypeOnline)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("got %v, want ErrSlotUnavailable", err)
	}
	if len(store.bookings) != 0 {
		t.Errorf("no booking should be recorded, got %d", len(store.bookings))
	}
}

// Once the first request consumes the slot, a second request for an
// overlapping window finds no covering slot. The row lock serializes the
// two transactions into exactly this order.
func TestCreateBookingOverlappingRequestsOnlyOneSucceeds(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "12:00:00", 20, 0)

	if _, err := createBooking(store, 4, 7, window("2026-03-16", "09:00:00", "11:00:00"), models.ServiceTypeOnline); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := createBooking(store, 5, 7, window("2026-03-16", "10:00:00", "12:00:00"), models.ServiceTypeOnline)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("second overlapping booking: got %v, want ErrSlotUnavailable", err)
	}
	if len(store.bookings) != 1 {
		t.Errorf("got %d bookings, want 1", len(store.bookings))
	}
}

func TestCreateBookingNoRateConfigured(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "17:00:00", 20, 0)

	_, err := createBooking(store, 4, 7, window("2026-03-16", "10:00:00", "12:00:00"), models.ServiceTypeOffline)
	if !errors.Is(err, ErrNoRateConfigured) {
		t.Fatalf("got %v, want ErrNoRateConfigured", err)
	}
	if len(store.bookings) != 0 {
		t.Errorf("no booking should be recorded, got %d", len(store.bookings))
	}
	if len(store.slots) != 1 {
		t.Errorf("slot should be untouched, got %d slots", len(store.slots))
	}
}

func TestCancelBookingRestoresSlot(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "17:00:00", 20, 30)

	b, err := createBooking(store, 4, 7, window("2026-03-16", "11:00:00", "13:00:00"), models.ServiceTypeOnline)
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}

	now := time.Date(2026, 3, 16, 7, 0, 0, 0, time.UTC)
	cancelled, err := cancelBooking(store, b.ID, 4, "user", now)
	if err != nil {
		t.Fatalf("cancelBooking: %v", err)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	// Two residuals plus the restored window.
	if len(store.slots) != 3 {
		t.Fatalf("got %d slots after cancel, want 3: %+v", len(store.slots), store.slots)
	}
	restored := store.slots[2]
	if restored.ChefID != 7 || restored.StartTime != "11:00:00" || restored.EndTime != "13:00:00" {
		t.Errorf("restored slot %+v does not match the booking window", restored)
	}
	if restored.OnlineRate == nil || *restored.OnlineRate != 20 {
		t.Errorf("restored online rate = %v, want 20", restored.OnlineRate)
	}
	if restored.OfflineRate != nil {
		t.Errorf("offline rate should stay unset on restore, got %v", *restored.OfflineRate)
	}
}

func TestCancelBookingTooLateLeavesStateAlone(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "11:00:00", 20, 0)

	b, err := createBooking(store, 4, 7, window("2026-03-16", "09:00:00", "11:00:00"), models.ServiceTypeOnline)
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}

	now := time.Date(2026, 3, 16, 7, 30, 0, 0, time.UTC)
	if _, err := cancelBooking(store, b.ID, 4, "user", now); !errors.Is(err, ErrTooLateToCancel) {
		t.Fatalf("got %v, want ErrTooLateToCancel", err)
	}

	stored, _ := store.FindBooking(b.ID)
	if stored.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending after refused cancel", stored.Status)
	}
	if len(store.slots) != 0 {
		t.Errorf("no slot should be restored, got %d", len(store.slots))
	}
}

func TestCancelBookingForbiddenForStrangers(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "11:00:00", 20, 0)

	b, err := createBooking(store, 4, 7, window("2026-03-16", "09:00:00", "11:00:00"), models.ServiceTypeOnline)
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}

	now := time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC)
	if _, err := cancelBooking(store, b.ID, 99, "user", now); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger cancel: got %v, want ErrForbidden", err)
	}
}

// A cancelled booking is terminal: it cannot be cancelled again and its
// slot is restored exactly once, and it can never move to confirmed.
func TestCancelledBookingIsTerminal(t *testing.T) {
	store := newMemoryStore()
	seedSlot(store, 7, "2026-03-16", "09:00:00", "11:00:00", 20, 0)

	b, err := createBooking(store, 4, 7, window("2026-03-16", "09:00:00", "11:00:00"), models.ServiceTypeOnline)
	if err != nil {
		t.Fatalf("createBooking: %v", err)
	}

	now := time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC)
	if _, err := cancelBooking(store, b.ID, 4, "user", now); err != nil {
		t.Fatalf("first cancel: %v", err)
	}

	if _, err := cancelBooking(store, b.ID, 4, "user", now); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("second cancel: got %v, want ErrBookingNotFound", err)
	}
	if len(store.slots) != 1 {
		t.Errorf("slot restored %d times, want exactly once", len(store.slots))
	}

	stored, _ := store.FindBooking(b.ID)
	if err := CheckConfirmable(stored.Status); !errors.Is(err, ErrNotConfirmable) {
		t.Errorf("cancelled booking confirmable check: got %v, want ErrNotConfirmable", err)
	}
}
