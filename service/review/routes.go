package review

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	db *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

func (h *ReviewHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/reviews", utils.AuthMiddleware(h.AddReview)).Methods("POST")
	router.HandleFunc("/reviews/{id}", utils.AuthMiddleware(h.UpdateReview)).Methods("PUT")
	router.HandleFunc("/reviews/{id}", utils.AuthMiddleware(h.DeleteReview)).Methods("DELETE")
	router.HandleFunc("/reviews/recipe/{recipeId}", h.GetRecipeReviews).Methods("GET")
	router.HandleFunc("/reviews/chef", utils.AuthMiddleware(h.AddChefReview)).Methods("POST")
	router.HandleFunc("/reviews/chef/{chefId}", h.GetChefReviews).Methods("GET")
}

func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetUserRoleFromContext(r.Context())
	if !utils.RoleAllowed(role, utils.RoleUser, utils.RoleAdmin) {
		http.Error(w, "You do not have permission to add reviews", http.StatusForbidden)
		return
	}

	var req struct {
		RecipeID uint   `json:"recipe_id"`
		Rating   int    `json:"rating"`
		Comment  string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	review := models.RecipeReview{
		RecipeID: req.RecipeID,
		UserID:   userID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := h.db.Create(&review).Error; err != nil {
		http.Error(w, "Error adding review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Review added successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetUserRoleFromContext(r.Context())
	if !utils.RoleAllowed(role, utils.RoleUser, utils.RoleAdmin) {
		http.Error(w, "You do not have permission to update reviews", http.StatusForbidden)
		return
	}

	vars := mux.Vars(r)
	reviewID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	var review models.RecipeReview
	if err := h.db.First(&review, reviewID).Error; err != nil {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}
	if review.UserID != userID && !utils.RoleAllowed(role, utils.RoleAdmin) {
		http.Error(w, "You can only update your own reviews", http.StatusForbidden)
		return
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := h.db.Save(&review).Error; err != nil {
		http.Error(w, "Error updating review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Review updated successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetUserRoleFromContext(r.Context())

	vars := mux.Vars(r)
	reviewID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	var review models.RecipeReview
	if err := h.db.First(&review, reviewID).Error; err != nil {
		http.Error(w, "Review not found", http.StatusNotFound)
		return
	}
	if review.UserID != userID && !utils.RoleAllowed(role, utils.RoleAdmin) {
		http.Error(w, "You can only delete your own reviews", http.StatusForbidden)
		return
	}

	if err := h.db.Delete(&review).Error; err != nil {
		http.Error(w, "Error deleting review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Review deleted successfully",
	})
}

func (h *ReviewHandler) GetRecipeReviews(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recipeID, err := strconv.ParseUint(vars["recipeId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid recipe ID", http.StatusBadRequest)
		return
	}

	var reviews []models.RecipeReview
	if err := h.db.Where("recipe_id = ?", recipeID).Preload("User").
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		http.Error(w, "Error retrieving reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}

func (h *ReviewHandler) AddChefReview(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		ChefID  uint   `json:"chef_id"`
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	review := models.ChefReview{
		ChefID:  req.ChefID,
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	tx := h.db.Begin()

	if err := tx.Create(&review).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error adding review", http.StatusInternalServerError)
		return
	}

	// Keep the chef profile's rating aggregate in step.
	var stats struct {
		Avg   float64
		Count int64
	}
	if err := tx.Model(&models.ChefReview{}).Where("chef_id = ?", req.ChefID).
		Select("AVG(rating) as avg, COUNT(*) as count").Scan(&stats).Error; err == nil {
		tx.Model(&models.ChefProfile{}).Where("user_id = ?", req.ChefID).Updates(map[string]interface{}{
			"average_rating": stats.Avg,
			"total_ratings":  stats.Count,
		})
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing review", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Review added successfully",
		"review":  review,
	})
}

func (h *ReviewHandler) GetChefReviews(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chefID, err := strconv.ParseUint(vars["chefId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid chef ID", http.StatusBadRequest)
		return
	}

	var reviews []models.ChefReview
	if err := h.db.Where("chef_id = ?", chefID).Preload("User").
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		http.Error(w, "Error retrieving reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}
