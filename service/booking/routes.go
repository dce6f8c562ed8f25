package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type BookingHandler struct {
	db         *gorm.DB
	reconciler *Reconciler
	validate   *validator.Validate
}

func NewBookingHandler(db *gorm.DB) *BookingHandler {
	return &BookingHandler{
		db:         db,
		reconciler: NewReconciler(db),
		validate:   validator.New(),
	}
}

func (h *BookingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/bookings", utils.AuthMiddleware(h.CreateBooking)).Methods("POST")
	router.HandleFunc("/bookings/{id}/cancel", utils.AuthMiddleware(h.CancelBooking)).Methods("PATCH")
	router.HandleFunc("/bookings/{id}", utils.AuthMiddleware(h.GetBooking)).Methods("GET")
	router.HandleFunc("/bookings", utils.AuthMiddleware(h.GetMyBookings)).Methods("GET")
	router.HandleFunc("/bookings/chef/{chefId}", utils.AuthMiddleware(h.GetChefBookings)).Methods("GET")
}

type createBookingRequest struct {
	ChefID      uint   `json:"chef_id" validate:"required"`
	BookingDate string `json:"booking_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	ServiceType string `json:"service_type" validate:"required,oneof=online offline"`
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Client wall-clock times arrive with an optional Timezone header and
	// are stored canonically in UTC.
	window, err := NormalizeWindow(req.BookingDate, req.StartTime, req.EndTime, r.Header.Get("Timezone"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	booking, err := h.reconciler.CreateBooking(userID, req.ChefID, window, req.ServiceType)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotUnavailable):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrNoRateConfigured):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error creating booking: %v", err)
			http.Error(w, "Error creating booking", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	_, err = h.reconciler.CancelBooking(uint(bookingID), userID, role, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			http.Error(w, "Booking not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "Unauthorized to cancel this booking", http.StatusForbidden)
		case errors.Is(err, ErrTooLateToCancel):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error canceling booking: %v", err)
			http.Error(w, "Error canceling booking", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Booking canceled successfully",
	})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	var booking models.Booking
	if err := h.db.Preload("User").Preload("Chef").First(&booking, bookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetUserRoleFromContext(r.Context())
	if !utils.RoleAllowed(role, utils.RoleAdmin) && booking.UserID != userID && booking.ChefID != userID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booking)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 100

	query := h.db.Model(&models.Booking{}).Where("user_id = ?", userID).Preload("Chef")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("booking_date DESC, start_time DESC").Find(&bookings).Error; err != nil {
		http.Error(w, "Error retrieving bookings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookings":    bookings,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *BookingHandler) GetChefBookings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chefID, err := strconv.ParseUint(vars["chefId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid chef ID", http.StatusBadRequest)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	role, _ := utils.GetUserRoleFromContext(r.Context())
	if !utils.RoleAllowed(role, utils.RoleAdmin) && uint(chefID) != userID {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 100

	query := h.db.Model(&models.Booking{}).Where("chef_id = ?", chefID).Preload("User")

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("booking_date DESC, start_time DESC").Find(&bookings).Error; err != nil {
		http.Error(w, "Error retrieving bookings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookings":    bookings,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
