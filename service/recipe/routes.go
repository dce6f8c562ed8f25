package recipe

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type RecipeHandler struct {
	db       *gorm.DB
	validate *validator.Validate
}

func NewRecipeHandler(db *gorm.DB) *RecipeHandler {
	return &RecipeHandler{db: db, validate: validator.New()}
}

func (h *RecipeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/recipes", utils.AuthMiddleware(h.CreateRecipe)).Methods("POST")
	router.HandleFunc("/recipes", h.GetAllRecipes).Methods("GET")
	router.HandleFunc("/recipes/search", h.SearchRecipes).Methods("GET")
	router.HandleFunc("/recipes/{id}", h.GetRecipe).Methods("GET")
	router.HandleFunc("/recipes/{id}", utils.AuthMiddleware(h.UpdateRecipe)).Methods("PUT")
	router.HandleFunc("/recipes/{id}", utils.AuthMiddleware(h.DeleteRecipe)).Methods("DELETE")
	router.HandleFunc("/recipes/{id}/shopping-list", h.GetShoppingList).Methods("GET")
}

type ingredientInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity"`
}

type recipeRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	CategoryID  uint              `json:"category_id"`
	Tags        []string          `json:"tags"`
	Ingredients []ingredientInput `json:"ingredients" validate:"dive"`
	Steps       []string          `json:"steps"`
}

func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleChef, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}
	chefID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	recipe := models.Recipe{
		ChefID:      chefID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Tags:        pq.StringArray(req.Tags),
	}
	if err := tx.Create(&recipe).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error creating recipe", http.StatusInternalServerError)
		return
	}

	for _, ing := range req.Ingredients {
		ingredient := models.Ingredient{
			RecipeID: recipe.ID,
			Name:     ing.Name,
			Quantity: ing.Quantity,
		}
		if err := tx.Create(&ingredient).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error saving ingredients", http.StatusInternalServerError)
			return
		}
	}

	for i, step := range req.Steps {
		s := models.Step{
			RecipeID:    recipe.ID,
			StepNumber:  i + 1,
			Description: step,
		}
		if err := tx.Create(&s).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error saving steps", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing recipe creation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   "Recipe created successfully",
		"recipe_id": recipe.ID,
	})
}

func (h *RecipeHandler) GetAllRecipes(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 20

	query := h.db.Model(&models.Recipe{})

	var total int64
	query.Count(&total)

	var recipes []models.Recipe
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&recipes).Error; err != nil {
		http.Error(w, "Error retrieving recipes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recipes":     recipes,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recipeID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid recipe ID", http.StatusBadRequest)
		return
	}

	var recipe models.Recipe
	if err := h.db.Preload("Ingredients").Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("steps.step_number ASC")
	}).First(&recipe, recipeID).Error; err != nil {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipe)
}

func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleChef, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}
	chefID, _ := utils.GetUserIDFromContext(r.Context())

	vars := mux.Vars(r)
	recipeID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid recipe ID", http.StatusBadRequest)
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, recipeID).Error; err != nil {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}
	if recipe.ChefID != chefID && !utils.RoleAllowed(role, utils.RoleAdmin) {
		http.Error(w, "You can only update your own recipes", http.StatusForbidden)
		return
	}

	tx := h.db.Begin()

	recipe.Title = req.Title
	recipe.Description = req.Description
	recipe.CategoryID = req.CategoryID
	recipe.Tags = pq.StringArray(req.Tags)
	if err := tx.Save(&recipe).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating recipe", http.StatusInternalServerError)
		return
	}

	// Ingredients and steps are replaced wholesale.
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Ingredient{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating ingredients", http.StatusInternalServerError)
		return
	}
	if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Step{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error updating steps", http.StatusInternalServerError)
		return
	}

	for _, ing := range req.Ingredients {
		ingredient := models.Ingredient{RecipeID: recipe.ID, Name: ing.Name, Quantity: ing.Quantity}
		if err := tx.Create(&ingredient).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error saving ingredients", http.StatusInternalServerError)
			return
		}
	}
	for i, step := range req.Steps {
		s := models.Step{RecipeID: recipe.ID, StepNumber: i + 1, Description: step}
		if err := tx.Create(&s).Error; err != nil {
			tx.Rollback()
			http.Error(w, "Error saving steps", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing recipe update", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Recipe updated successfully",
	})
}

func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	role, err := utils.GetUserRoleFromContext(r.Context())
	if err != nil || !utils.RoleAllowed(role, utils.RoleChef, utils.RoleAdmin) {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}
	chefID, _ := utils.GetUserIDFromContext(r.Context())

	vars := mux.Vars(r)
	recipeID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid recipe ID", http.StatusBadRequest)
		return
	}

	query := h.db.Where("id = ?", recipeID)
	if !utils.RoleAllowed(role, utils.RoleAdmin) {
		query = query.Where("chef_id = ?", chefID)
	}

	result := query.Delete(&models.Recipe{})
	if result.Error != nil {
		http.Error(w, "Error deleting recipe", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Recipe not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Recipe deleted successfully",
	})
}

// SearchRecipes filters by category and matches the query against recipe
// titles and ingredient names.
func (h *RecipeHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	searchQuery := r.URL.Query().Get("query")
	categoryID := r.URL.Query().Get("category_id")

	query := h.db.Model(&models.Recipe{})

	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if searchQuery != "" {
		pattern := "%" + searchQuery + "%"
		query = query.Where(
			"title ILIKE ? OR EXISTS (SELECT 1 FROM ingredients WHERE ingredients.recipe_id = recipes.id AND ingredients.name ILIKE ?)",
			pattern, pattern,
		)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		log.Printf("Error searching recipes: %v", err)
		http.Error(w, "Error searching recipes", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recipes)
}

func (h *RecipeHandler) GetShoppingList(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recipeID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid recipe ID", http.StatusBadRequest)
		return
	}

	var ingredients []models.Ingredient
	if err := h.db.Where("recipe_id = ?", recipeID).Find(&ingredients).Error; err != nil {
		http.Error(w, "Error retrieving shopping list", http.StatusInternalServerError)
		return
	}
	if len(ingredients) == 0 {
		http.Error(w, "No ingredients found for this recipe", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recipe_id":     recipeID,
		"shopping_list": ingredients,
	})
}
