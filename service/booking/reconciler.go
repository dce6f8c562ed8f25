package booking

import (
	"errors"
	"math"
	"time"

	"github.com/recipemania/recipe-mania-server/cmd/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSlotUnavailable  = errors.New("selected time slot is not available")
	ErrNoRateConfigured = errors.New("no rate set for the requested service type")
	ErrInvalidDuration  = errors.New("invalid booking duration")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrForbidden        = errors.New("not authorized to cancel this booking")
	ErrTooLateToCancel  = errors.New("cancellation is only allowed more than 3 hours before the booking start time")
	ErrNotConfirmable   = errors.New("only a pending booking can be confirmed")
)

// CancelLeadTimeHours is the minimum number of whole hours between now and
// a booking's start for a non-admin cancellation to be allowed.
const CancelLeadTimeHours = 3

const weekendMultiplier = 1.25

// SlotStore is the persistence boundary the reconciler drives: slot lookup
// and replacement, booking rows. The gorm implementation runs inside a
// transaction with the matched row locked for the whole operation.
type SlotStore interface {
	FindCoveringSlot(chefID uint, date, start, end string) (*models.Availability, error)
	DeleteSlot(chefID uint, date, start, end string) error
	InsertSlot(slot *models.Availability) error
	InsertBooking(b *models.Booking) error
	FindBooking(id uint) (*models.Booking, error)
	SaveBooking(b *models.Booking) error
}

type gormStore struct {
	tx *gorm.DB
}

func (s gormStore) FindCoveringSlot(chefID uint, date, start, end string) (*models.Availability, error) {
	var slot models.Availability
	err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("chef_id = ? AND available_date = ? AND start_time <= ? AND end_time >= ?",
			chefID, date, start, end).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s gormStore) DeleteSlot(chefID uint, date, start, end string) error {
	return s.tx.Where("chef_id = ? AND available_date = ? AND start_time = ? AND end_time = ?",
		chefID, date, start, end).
		Delete(&models.Availability{}).Error
}

func (s gormStore) InsertSlot(slot *models.Availability) error {
	return s.tx.Create(slot).Error
}

func (s gormStore) InsertBooking(b *models.Booking) error {
	return s.tx.Create(b).Error
}

func (s gormStore) FindBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s gormStore) SaveBooking(b *models.Booking) error {
	return s.tx.Save(b).Error
}

// Reconciler owns the availability/booking rules: matching a requested
// window against a chef's open slots, splitting a slot that is only partly
// consumed, and restoring a slot when a booking is cancelled. All mutations
// run inside a transaction with the matched row locked, so two concurrent
// requests cannot both consume overlapping time.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// ResolveRate picks the slot rate for the requested service type. A missing
// or zero rate means the chef never opened that service for this slot.
func ResolveRate(slot *models.Availability, serviceType string) (float64, error) {
	var rate *float64
	if serviceType == models.ServiceTypeOnline {
		rate = slot.OnlineRate
	} else {
		rate = slot.OfflineRate
	}
	if rate == nil || *rate == 0 {
		return 0, ErrNoRateConfigured
	}
	return *rate, nil
}

// ResidualWindows computes the 0, 1 or 2 fragments of a slot left over
// after a booking consumes part of it. Boundaries are compared by exact
// HH:MM:SS equality, so the union of the residuals and the booked window
// always equals the original slot.
func ResidualWindows(slot, req TimeWindow) []TimeWindow {
	var residuals []TimeWindow
	if slot.Start < req.Start {
		residuals = append(residuals, TimeWindow{Date: slot.Date, Start: slot.Start, End: req.Start})
	}
	if slot.End > req.End {
		residuals = append(residuals, TimeWindow{Date: slot.Date, Start: req.End, End: slot.End})
	}
	return residuals
}

// Price computes the charge for a booking: base rate times fractional
// hours, with a 1.25 multiplier when the UTC booking date falls on a
// weekend.
func Price(baseRate float64, w TimeWindow) (float64, error) {
	hours := w.DurationHours()
	if hours <= 0 {
		return 0, ErrInvalidDuration
	}
	rate := baseRate
	if w.isWeekend() {
		rate *= weekendMultiplier
	}
	return rate * hours, nil
}

// AmountInCents converts a price to the payment gateway's minor unit.
func AmountInCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CheckCancelPolicy enforces the cancellation lead time: non-admin actors
// may only cancel when the booking starts at least CancelLeadTimeHours
// whole hours from now. Admins bypass the check.
func CheckCancelPolicy(start, now time.Time, role string) error {
	if role == "admin" {
		return nil
	}
	leadTime := int(start.Sub(now).Hours())
	if leadTime < CancelLeadTimeHours {
		return ErrTooLateToCancel
	}
	return nil
}

// CheckConfirmable enforces the pending to confirmed transition. A
// cancelled booking's slot has already been restored, so confirming it
// would hold the same window as both availability and a booking.
func CheckConfirmable(status string) error {
	if status != models.BookingStatusPending {
		return ErrNotConfirmable
	}
	return nil
}

// RestoredSlot rebuilds the availability slot a cancelled booking consumed.
// Only the rate for the booking's own service type is restored; the other
// rate is left unset.
func RestoredSlot(b *models.Booking) models.Availability {
	slot := models.Availability{
		ChefID:        b.ChefID,
		AvailableDate: b.BookingDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Timezone:      "UTC",
	}
	rate := b.Rate
	if b.ServiceType == models.ServiceTypeOnline {
		slot.OnlineRate = &rate
	} else {
		slot.OfflineRate = &rate
	}
	return slot
}

func createBooking(store SlotStore, userID, chefID uint, req TimeWindow, serviceType string) (*models.Booking, error) {
	slot, err := store.FindCoveringSlot(chefID, req.Date, req.Start, req.End)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	rate, err := ResolveRate(slot, serviceType)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:      userID,
		ChefID:      chefID,
		BookingDate: req.Date,
		StartTime:   req.Start,
		EndTime:     req.End,
		ServiceType: serviceType,
		Rate:        rate,
		Status:      models.BookingStatusPending,
	}
	if err := store.InsertBooking(booking); err != nil {
		return nil, err
	}

	// Delete the matched slot by its exact identity, not the requested
	// sub-window.
	if err := store.DeleteSlot(slot.ChefID, slot.AvailableDate, slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}

	slotWindow := TimeWindow{Date: slot.AvailableDate, Start: slot.StartTime, End: slot.EndTime}
	for _, residual := range ResidualWindows(slotWindow, req) {
		fragment := models.Availability{
			ChefID:        slot.ChefID,
			AvailableDate: residual.Date,
			StartTime:     residual.Start,
			EndTime:       residual.End,
			OnlineRate:    slot.OnlineRate,
			OfflineRate:   slot.OfflineRate,
			Timezone:      slot.Timezone,
		}
		if err := store.InsertSlot(&fragment); err != nil {
			return nil, err
		}
	}

	return booking, nil
}

func cancelBooking(store SlotStore, bookingID, actorID uint, role string, now time.Time) (*models.Booking, error) {
	booking, err := store.FindBooking(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled {
		return nil, ErrBookingNotFound
	}

	if role != "admin" && booking.UserID != actorID && booking.ChefID != actorID {
		return nil, ErrForbidden
	}

	start, err := TimeWindow{Date: booking.BookingDate, Start: booking.StartTime}.StartInstant()
	if err != nil {
		return nil, err
	}
	if err := CheckCancelPolicy(start, now.UTC(), role); err != nil {
		return nil, err
	}

	booking.Status = models.BookingStatusCancelled
	if err := store.SaveBooking(booking); err != nil {
		return nil, err
	}

	restored := RestoredSlot(booking)
	if err := store.InsertSlot(&restored); err != nil {
		return nil, err
	}

	return booking, nil
}

// CreateBooking finds a slot covering the requested UTC window, freezes the
// rate, records the booking and replaces the slot with its residuals, all in
// one transaction. The matched slot row is locked for the duration so a
// concurrent request for overlapping time observes ErrSlotUnavailable.
func (r *Reconciler) CreateBooking(userID, chefID uint, req TimeWindow, serviceType string) (*models.Booking, error) {
	var booking *models.Booking

	err := r.db.Transaction(func(tx *gorm.DB) error {
		b, err := createBooking(gormStore{tx: tx}, userID, chefID, req, serviceType)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// CancelBooking marks a booking cancelled and restores its availability
// slot. The booking is kept as a row with a terminal status rather than
// deleted, so the history stays auditable.
func (r *Reconciler) CancelBooking(bookingID, actorID uint, role string, now time.Time) (*models.Booking, error) {
	var booking *models.Booking

	err := r.db.Transaction(func(tx *gorm.DB) error {
		b, err := cancelBooking(gormStore{tx: tx}, bookingID, actorID, role, now)
		if err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}
