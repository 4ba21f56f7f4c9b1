package controllers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
)

// CreateMealRequest represents the request body for creating a meal
type CreateMealRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Description string  `json:"description" binding:"required"`
	Default     bool    `json:"menu_default"`
}

// UpdateMealRequest represents the request body for editing a meal
type UpdateMealRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Default     *bool    `json:"menu_default"`
}

// mealIDParam parses the :id path segment. Writes the error response and
// returns false when the segment is not an integer.
func mealIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Meal id must be an integer",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// attachImageURL fills the computed presigned URL on a meal view
func attachImageURL(meal *models.Meal) {
	imageService := services.GetImageService()
	if imageService == nil || meal.ImageS3Key == nil {
		return
	}
	url, err := imageService.GetImageURL(*meal.ImageS3Key)
	if err != nil {
		log.Printf("failed to generate image URL for meal %d: %v", meal.ID, err)
		return
	}
	if url != "" {
		meal.ImageURL = &url
	}
}

// CreateMeal handles POST /api/v1/meals - adds a meal to the caterer's catalog
func CreateMeal(c *gin.Context) {
	caterer, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid meal name provided",
			},
		})
		return
	}

	db := config.GetDB()
	var count int64
	db.Model(&models.Meal{}).Where("caterer_id = ? AND name = ?", caterer.ID, name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEAL_EXISTS",
				"message": "You already have a similar meal",
			},
		})
		return
	}

	meal := models.Meal{
		Name:        name,
		Price:       req.Price,
		Description: req.Description,
		Default:     req.Default,
		CatererID:   caterer.ID,
	}
	if err := db.Create(&meal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create meal",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New meal created",
		"data":    meal,
	})
}

// ListMeals handles GET /api/v1/meals - lists the caterer's own meals
func ListMeals(c *gin.Context) {
	caterer, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var meals []models.Meal
	if err := db.Where("caterer_id = ?", caterer.ID).Order("id").Find(&meals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load meals",
			},
		})
		return
	}

	for i := range meals {
		attachImageURL(&meals[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    meals,
	})
}

// GetMeal handles GET /api/v1/meals/:id - fetches one of the caterer's meals
func GetMeal(c *gin.Context) {
	caterer, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var meal models.Meal
	if err := db.Where("caterer_id = ?", caterer.ID).First(&meal, mealID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEAL_NOT_FOUND",
				"message": "Meal not found",
			},
		})
		return
	}

	attachImageURL(&meal)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    meal,
	})
}

// UpdateMeal handles PUT /api/v1/meals/:id - edits one of the caterer's meals
func UpdateMeal(c *gin.Context) {
	caterer, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.ToLower(strings.TrimSpace(*req.Name))
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid meal name provided",
				},
			})
			return
		}
		updates["name"] = name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Invalid value for price",
				},
			})
			return
		}
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Default != nil {
		updates["default"] = *req.Default
	}

	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var meal models.Meal
	if err := db.Where("caterer_id = ?", caterer.ID).First(&meal, mealID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEAL_NOT_FOUND",
				"message": "Meal not found",
			},
		})
		return
	}

	// Renames must stay unique within the caterer's catalog
	if name, renamed := updates["name"]; renamed && name != meal.Name {
		var count int64
		db.Model(&models.Meal{}).
			Where("caterer_id = ? AND name = ? AND id <> ?", caterer.ID, name, meal.ID).
			Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MEAL_EXISTS",
					"message": "You already have a similar meal",
				},
			})
			return
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&meal).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update meal",
				},
			})
			return
		}
		if err := db.First(&meal, meal.ID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to reload meal",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Meal edited",
		"data":    meal,
	})
}

// DeleteMeal handles DELETE /api/v1/meals/:id - removes one of the caterer's meals
func DeleteMeal(c *gin.Context) {
	caterer, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	mealID, ok := mealIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var meal models.Meal
	if err := db.Where("caterer_id = ?", caterer.ID).First(&meal, mealID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEAL_NOT_FOUND",
				"message": "Meal not found",
			},
		})
		return
	}

	// Remove the stored image as well; a failure here is logged, not fatal
	if meal.ImageS3Key != nil {
		if imageService := services.GetImageService(); imageService != nil {
			if err := imageService.DeleteImage(*meal.ImageS3Key); err != nil {
				log.Printf("failed to delete image for meal %d: %v", meal.ID, err)
			}
		}
	}

	if err := db.Delete(&meal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete meal",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Meal deleted",
	})
}
