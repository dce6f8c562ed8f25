package availability

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"github.com/recipemania/recipe-mania-server/service/booking"
	"gorm.io/gorm"
)

type AvailabilityHandler struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewAvailabilityHandler(db *gorm.DB) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, validate: validator.New()}
}

func (h *AvailabilityHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/availability", utils.AuthMiddleware(h.AddAvailability)).Methods("POST")
	router.HandleFunc("/availability/chef/{chefId}", h.GetAvailability).Methods("GET")
	router.HandleFunc("/availability/{id}", utils.AuthMiddleware(h.DeleteAvailability)).Methods("DELETE")
}

type addAvailabilityRequest struct {
	AvailableDate string   `json:"available_date" validate:"required"`
	StartTime     string   `json:"start_time" validate:"required"`
	EndTime       string   `json:"end_time" validate:"required"`
	OnlineRate    *float64 `json:"online_rate" validate:"omitempty,gt=0"`
	OfflineRate   *float64 `json:"offline_rate" validate:"omitempty,gt=0"`
}

func (h *AvailabilityHandler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	chefID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleChef, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	var req addAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	window, err := booking.NormalizeWindow(req.AvailableDate, req.StartTime, req.EndTime, r.Header.Get("Timezone"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Check for overlapping slots on the same chef and date.
	var existing models.Availability
	overlap := h.db.Where("chef_id = ? AND available_date = ? AND start_time < ? AND end_time > ?",
		chefID, window.Date, window.End, window.Start).First(&existing)

	if overlap.Error != nil && overlap.Error != gorm.ErrRecordNotFound {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if overlap.Error == nil {
		http.Error(w, "Time slot overlaps with existing availability", http.StatusConflict)
		return
	}

	slot := models.Availability{
		ChefID:        chefID,
		AvailableDate: window.Date,
		StartTime:     window.Start,
		EndTime:       window.End,
		OnlineRate:    req.OnlineRate,
		OfflineRate:   req.OfflineRate,
		Timezone:      "UTC",
	}

	if err := h.db.Create(&slot).Error; err != nil {
		log.Printf("Error creating availability: %v", err)
		http.Error(w, "Error creating availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Availability added successfully",
		"availability": slot,
	})
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chefID, err := strconv.ParseUint(vars["chefId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid chef ID", http.StatusBadRequest)
		return
	}

	clientTimezone := r.Header.Get("Timezone")
	today := time.Now().UTC().Format("2006-01-02")

	var slots []models.Availability
	if err := h.db.Where("chef_id = ? AND available_date >= ?", chefID, today).
		Order("available_date, start_time").Find(&slots).Error; err != nil {
		http.Error(w, "Error retrieving availability", http.StatusInternalServerError)
		return
	}

	// Stored UTC windows are converted back to the client's timezone.
	type slotResponse struct {
		models.Availability
		LocalDate      string `json:"available_date"`
		LocalStartTime string `json:"start_time"`
		LocalEndTime   string `json:"end_time"`
		LocalTimezone  string `json:"timezone"`
	}

	response := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		window := booking.TimeWindow{Date: slot.AvailableDate, Start: slot.StartTime, End: slot.EndTime}
		local, err := booking.LocalizeWindow(window, clientTimezone)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tz := clientTimezone
		if tz == "" {
			tz = "UTC"
		}
		response = append(response, slotResponse{
			Availability:   slot,
			LocalDate:      local.Date,
			LocalStartTime: local.Start,
			LocalEndTime:   local.End,
			LocalTimezone:  tz,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *AvailabilityHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slotID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid availability ID", http.StatusBadRequest)
		return
	}

	chefID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result := h.db.Where("id = ? AND chef_id = ?", slotID, chefID).Delete(&models.Availability{})
	if result.Error != nil {
		http.Error(w, "Error deleting availability", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Availability not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Availability deleted successfully",
	})
}
