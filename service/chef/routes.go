package chef

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type ChefHandler struct {
	db *gorm.DB
}

func NewChefHandler(db *gorm.DB) *ChefHandler {
	return &ChefHandler{db: db}
}

func (h *ChefHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chefs/{chefId}/profile", h.GetChefProfile).Methods("GET")
	router.HandleFunc("/chefs/profile", utils.AuthMiddleware(h.UpdateChefProfile)).Methods("PUT")
	router.HandleFunc("/chefs/profile/picture", utils.AuthMiddleware(h.UploadProfilePicture)).Methods("POST")
}

// GetChefProfile returns a chef's public profile together with their
// reviews.
func (h *ChefHandler) GetChefProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	chefID, err := strconv.ParseUint(vars["chefId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid chef ID", http.StatusBadRequest)
		return
	}

	var profile models.ChefProfile
	if err := h.db.Preload("User").Where("user_id = ?", chefID).First(&profile).Error; err != nil {
		http.Error(w, "Chef profile not found", http.StatusNotFound)
		return
	}

	var reviews []models.ChefReview
	if err := h.db.Where("chef_id = ?", chefID).Preload("User").
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		http.Error(w, "Error retrieving reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"profile": profile,
		"reviews": reviews,
	})
}

// UpdateChefProfile creates or updates the caller's chef profile.
func (h *ChefHandler) UpdateChefProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleChef, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	var req struct {
		Experience string `json:"experience"`
		Expertise  string `json:"expertise"`
		Location   string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var profile models.ChefProfile
	result := h.db.Where("user_id = ?", userID).First(&profile)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	profile.UserID = userID
	profile.Experience = req.Experience
	profile.Expertise = req.Expertise
	profile.Location = req.Location

	if err := h.db.Save(&profile).Error; err != nil {
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (h *ChefHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		http.Error(w, "Picture file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := utils.SaveProfilePicture(file, header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var profile models.ChefProfile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		http.Error(w, "Chef profile not found", http.StatusNotFound)
		return
	}

	if profile.ProfilePicturePath != "" {
		utils.DeleteProfilePicture(profile.ProfilePicturePath)
	}

	profile.ProfilePicturePath = path
	if err := h.db.Save(&profile).Error; err != nil {
		http.Error(w, "Error saving profile picture", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":              "Profile picture updated successfully",
		"profile_picture_path": path,
	})
}
