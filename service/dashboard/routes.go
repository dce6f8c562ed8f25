package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

type DashboardStats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalChefs    int64   `json:"total_chefs"`
	TotalBookings int64   `json:"total_bookings"`
	TotalRevenue  float64 `json:"total_revenue"`
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	dashboardRouter := router.PathPrefix("/dashboard").Subrouter()
	dashboardRouter.HandleFunc("/bookings", utils.AuthMiddleware(h.GetPastBookings)).Methods("GET")
	dashboardRouter.HandleFunc("/payments", utils.AuthMiddleware(h.GetPaymentHistory)).Methods("GET")
	dashboardRouter.HandleFunc("/favorites", utils.AuthMiddleware(h.AddToFavorites)).Methods("POST")
	dashboardRouter.HandleFunc("/favorites", utils.AuthMiddleware(h.RemoveFromFavorites)).Methods("DELETE")
	dashboardRouter.HandleFunc("/favorites", utils.AuthMiddleware(h.GetFavorites)).Methods("GET")
	dashboardRouter.HandleFunc("/stats", utils.AuthMiddleware(h.GetDashboardStats)).Methods("GET")
}

func (h *DashboardHandler) GetPastBookings(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var bookings []models.Booking
	if err := h.db.Where("user_id = ?", userID).Preload("Chef").
		Order("booking_date DESC").Find(&bookings).Error; err != nil {
		http.Error(w, "Error retrieving bookings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bookings": bookings,
	})
}

func (h *DashboardHandler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var transactions []models.Transaction
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		http.Error(w, "Failed to fetch payment history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"payment_history": transactions,
	})
}

func (h *DashboardHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ChefID   *uint `json:"chef_id"`
		RecipeID *uint `json:"recipe_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChefID == nil && req.RecipeID == nil {
		http.Error(w, "Please provide a chef_id or recipe_id", http.StatusBadRequest)
		return
	}

	// Idempotent: an existing favorite is returned as-is.
	var existing models.Favorite
	query := h.db.Where("user_id = ?", userID)
	if req.ChefID != nil {
		query = query.Where("chef_id = ?", *req.ChefID)
	}
	if req.RecipeID != nil {
		query = query.Where("recipe_id = ?", *req.RecipeID)
	}
	if err := query.First(&existing).Error; err == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"favorite": existing})
		return
	}

	favorite := models.Favorite{
		UserID:   userID,
		ChefID:   req.ChefID,
		RecipeID: req.RecipeID,
	}
	if err := h.db.Create(&favorite).Error; err != nil {
		http.Error(w, "Error adding to favorites", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"favorite": favorite,
	})
}

func (h *DashboardHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ChefID   *uint `json:"chef_id"`
		RecipeID *uint `json:"recipe_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ChefID == nil && req.RecipeID == nil {
		http.Error(w, "Please provide a chef_id or recipe_id", http.StatusBadRequest)
		return
	}

	query := h.db.Where("user_id = ?", userID)
	if req.ChefID != nil {
		query = query.Where("chef_id = ?", *req.ChefID)
	}
	if req.RecipeID != nil {
		query = query.Where("recipe_id = ?", *req.RecipeID)
	}

	result := query.Delete(&models.Favorite{})
	if result.Error != nil {
		http.Error(w, "Error removing from favorites", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Favorite not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Removed from favorites",
	})
}

func (h *DashboardHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var favorites []models.Favorite
	if err := h.db.Where("user_id = ?", userID).Find(&favorites).Error; err != nil {
		http.Error(w, "Error retrieving favorites", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"favorites": favorites,
	})
}

func (h *DashboardHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	var stats DashboardStats

	h.db.Model(&models.User{}).Where("role = ?", utils.RoleUser).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("role = ?", utils.RoleChef).Count(&stats.TotalChefs)
	h.db.Model(&models.Booking{}).Count(&stats.TotalBookings)
	h.db.Model(&models.Transaction{}).Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
