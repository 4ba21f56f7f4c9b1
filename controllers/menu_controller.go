package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
)

// DateLayout is the fixed wire format for menu dates
const DateLayout = "02-01-2006"

// PublishMenuRequest represents the request body for publishing a menu.
// Date is optional and defaults to today.
type PublishMenuRequest struct {
	MealList []uint `json:"meal_list" binding:"required"`
	Date     string `json:"date"`
}

// PublishMenu handles POST /api/v1/menu - creates or extends the menu for a
// date with the caterer's meals (admin only)
func PublishMenu(c *gin.Context) {
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

	var req PublishMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Make meal_list a list of Meal object IDs",
				"details": err.Error(),
			},
		})
		return
	}

	date := models.MenuDate(time.Now())
	if req.Date != "" {
		parsed, err := time.ParseInLocation(DateLayout, req.Date, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Ensure date is provided using format DD-MM-YYYY",
				},
			})
			return
		}
		date = models.MenuDate(parsed)
	}

	menuService := services.NewMenuService(config.GetDB())
	menu, err := menuService.Publish(caterer, req.MealList, date)
	if err != nil {
		var notOwner *services.NotOwnerError
		switch {
		case errors.Is(err, services.ErrEmptyMealList):
			c.JSON(http.StatusAccepted, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_MENU",
					"message": "Menu object can not be empty",
				},
			})
		case errors.As(err, &notOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":     "PERMISSION_DENIED",
					"message":  "You can only publish meals you own",
					"meal_ids": notOwner.MealIDs,
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to publish menu",
				},
			})
		}
		return
	}

	// Fire-and-forget fan-out; the request never waits on delivery
	if notifier := services.GetNotificationService(); notifier != nil {
		notifier.PublishMenuUpdated(services.MenuUpdatedEvent{
			Date:  menu.Date,
			Meals: menu.Meals,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Meals successfully added to the menu for " + menu.Date.Format(DateLayout),
		"data":    menu,
	})
}

// GetMenu handles GET /api/v1/menu - returns today's resolved menu
func GetMenu(c *gin.Context) {
	today := models.MenuDate(time.Now())
	menuService := services.NewMenuService(config.GetDB())

	meals, err := menuService.Resolve(today)
	if errors.Is(err, services.ErrMenuNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MENU_NOT_FOUND",
				"message": "No menu found for " + today.Format(DateLayout),
			},
			"data": gin.H{
				"date":  today.Format(DateLayout),
				"meals": []models.Meal{},
			},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to resolve menu",
			},
		})
		return
	}

	for i := range meals {
		attachImageURL(&meals[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"date":  today.Format(DateLayout),
			"meals": meals,
		},
	})
}
