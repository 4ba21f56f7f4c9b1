package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/models"
)

// userIDParam parses the :id path segment. Writes the error response and
// returns false when the segment is not an integer.
func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "User id must be an integer",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// ListUsers handles GET /api/v1/users - lists active accounts (super admin only)
func ListUsers(c *gin.Context) {
	db := config.GetDB()
	var users []models.User
	if err := db.Where("is_active = ?", true).Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// GetUser handles GET /api/v1/users/:id - fetches one account (super admin only)
func GetUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// PromoteUser handles PUT /api/v1/users/promote/:id - grants admin rights (super admin only)
func PromoteUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to promote user",
			},
		})
		return
	}
	user.IsAdmin = true

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User has now been made admin",
		"data":    user,
	})
}

// DeactivateUser handles DELETE /api/v1/users/:id - deactivates an account (super admin only)
func DeactivateUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("is_active = ?", true).First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if err := db.Model(&user).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to deactivate user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User has been deactivated",
	})
}
