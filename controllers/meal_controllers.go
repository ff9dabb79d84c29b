package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/utils"
)

type MealController struct {
	DB *gorm.DB
}

func NewMealController(db *gorm.DB) *MealController {
	return &MealController{DB: db}
}

// GetAllMeals -> public catalog listing.
func (mc *MealController) GetAllMeals(c *gin.Context) {
	var meals []models.Meal
	query := mc.DB
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Where("available = ?", true).Find(&meals).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of meals", meals)
}

// GetMealByID -> public detail of one meal.
func (mc *MealController) GetMealByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("meal_id"))

	var meal models.Meal
	if err := mc.DB.First(&meal, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Meal detail", meal)
}

// CreateMeal -> provider adds a meal to their catalog.
func (mc *MealController) CreateMeal(c *gin.Context) {
	providerID, _ := c.Get("userID")

	type request struct {
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required,gte=0"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		ImageUrl    string  `json:"image_url"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	meal := models.Meal{
		ProviderID:  providerID.(uint),
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		ImageUrl:    req.ImageUrl,
		Available:   true,
	}
	if err := mc.DB.Create(&meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Meal created", meal)
}

// UpdateMeal -> provider edits their own meal; admin can edit any.
func (mc *MealController) UpdateMeal(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("meal_id"))

	meal, ok := mc.loadOwnedMeal(c, uint(id))
	if !ok {
		return
	}

	type request struct {
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		ImageUrl    *string  `json:"image_url"`
		Available   *bool    `json:"available"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		meal.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must be zero or positive"))
			return
		}
		meal.Price = *req.Price
	}
	if req.Category != nil {
		meal.Category = *req.Category
	}
	if req.Description != nil {
		meal.Description = *req.Description
	}
	if req.ImageUrl != nil {
		meal.ImageUrl = *req.ImageUrl
	}
	if req.Available != nil {
		meal.Available = *req.Available
	}

	if err := mc.DB.Save(meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Meal updated", meal)
}

// DeleteMeal -> provider removes their own meal. Existing order snapshots keep
// the meal's name and price regardless.
func (mc *MealController) DeleteMeal(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("meal_id"))

	meal, ok := mc.loadOwnedMeal(c, uint(id))
	if !ok {
		return
	}

	if err := mc.DB.Delete(meal).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Meal deleted", gin.H{"meal_id": id})
}

func (mc *MealController) loadOwnedMeal(c *gin.Context, mealID uint) (*models.Meal, bool) {
	var meal models.Meal
	if err := mc.DB.First(&meal, mealID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return nil, false
	}

	role, _ := c.Get("role")
	userID, _ := c.Get("userID")
	if role != models.RoleAdmin && meal.ProviderID != userID.(uint) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return nil, false
	}
	return &meal, true
}
