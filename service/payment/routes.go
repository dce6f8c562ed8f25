package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"github.com/recipemania/recipe-mania-server/service/booking"
	"github.com/recipemania/recipe-mania-server/service/notification"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentHandler struct {
	db *gorm.DB
}

func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &PaymentHandler{db: db}
}

func (h *PaymentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/payments/process", utils.AuthMiddleware(h.ProcessPayment)).Methods("POST")
	router.HandleFunc("/payments/confirm", utils.AuthMiddleware(h.ConfirmBooking)).Methods("POST")
}

// ProcessPayment prices a pending booking and opens a Stripe payment
// intent for it. The amount is the dynamic price converted to cents.
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID uint `json:"booking_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var b models.Booking
	if err := h.db.First(&b, req.BookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}
	if b.UserID != userID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	window := booking.TimeWindow{Date: b.BookingDate, Start: b.StartTime, End: b.EndTime}
	price, err := booking.Price(b.Rate, window)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDuration) {
			http.Error(w, "Invalid booking hours", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error pricing booking", http.StatusInternalServerError)
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(booking.AmountInCents(price)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("Payment processing error: %v", err)
		http.Error(w, "Payment processing failed", http.StatusInternalServerError)
		return
	}

	if err := h.db.Model(&models.Booking{}).Where("id = ?", b.ID).
		Update("payment_intent_id", intent.ID).Error; err != nil {
		log.Printf("Error saving payment intent: %v", err)
		http.Error(w, "Error updating booking", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"clientSecret": intent.ClientSecret,
		"price":        booking.AmountInCents(price),
	})
}

// ConfirmBooking marks a booking confirmed once the client reports a
// successful payment, records the transaction and sends the confirmation
// email with times rendered in the caller's timezone.
func (h *PaymentHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingID       uint   `json:"booking_id"`
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	// The row stays locked so a concurrent cancel cannot slip between the
	// status check and the update.
	var b models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, req.BookingID).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	// Only a pending booking can move to confirmed. A cancelled booking
	// already had its slot restored.
	if err := booking.CheckConfirmable(b.Status); err != nil {
		tx.Rollback()
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	window := booking.TimeWindow{Date: b.BookingDate, Start: b.StartTime, End: b.EndTime}
	price, err := booking.Price(b.Rate, window)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, booking.ErrInvalidDuration) {
			http.Error(w, "Invalid booking hours", http.StatusBadRequest)
			return
		}
		http.Error(w, "Error pricing booking", http.StatusInternalServerError)
		return
	}

	b.Status = models.BookingStatusConfirmed
	b.PaymentIntentID = req.PaymentIntentID
	if err := tx.Save(&b).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error confirming booking", http.StatusInternalServerError)
		return
	}

	transaction := models.Transaction{
		UserID:    b.UserID,
		BookingID: b.ID,
		Amount:    price,
		Method:    "Stripe",
		Purpose:   "Booking",
		Reference: req.PaymentIntentID,
	}
	if err := tx.Create(&transaction).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating transaction", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing confirmation", http.StatusInternalServerError)
		return
	}

	// Email failures are logged, never surfaced to the caller.
	go func(b models.Booking, tz string) {
		var user, chef models.User
		if err := h.db.First(&user, b.UserID).Error; err != nil {
			log.Printf("Failed to load user for booking %d email: %v", b.ID, err)
			return
		}
		if err := h.db.First(&chef, b.ChefID).Error; err != nil {
			log.Printf("Failed to load chef for booking %d email: %v", b.ID, err)
			return
		}
		local, err := booking.LocalizeWindow(booking.TimeWindow{Date: b.BookingDate, Start: b.StartTime, End: b.EndTime}, tz)
		if err != nil {
			local = booking.TimeWindow{Date: b.BookingDate, Start: b.StartTime, End: b.EndTime}
		}
		details := notification.BookingDetails{
			UserName:  user.Name,
			ChefName:  chef.Name,
			Date:      local.Date,
			StartTime: formatClock(local.Start),
			EndTime:   formatClock(local.End),
		}
		if err := notification.SendBookingConfirmation(user.Email, details); err != nil {
			log.Printf("Failed to send confirmation email for booking %d: %v", b.ID, err)
		}
	}(b, r.Header.Get("Timezone"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Booking confirmed successfully",
		"booking": b,
	})
}

// formatClock renders an HH:MM:SS time as hh:mm AM/PM for emails.
func formatClock(clock string) string {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		return clock
	}
	return t.Format("03:04 PM")
}
