package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
	"github.com/book-a-meal/book-a-meal-api/utils"
)

// UploadMealImage handles POST /api/v1/meals/:id/image - attaches a PNG image
// to one of the caterer's meals. A previously uploaded image is replaced.
func UploadMealImage(c *gin.Context) {
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

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "An image file is required under the 'image' form field",
			},
		})
		return
	}

	imageService := services.GetImageService()
	if imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOADS_UNAVAILABLE",
				"message": "Image uploads are not configured",
			},
		})
		return
	}

	s3Key, err := imageService.UploadImage(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to upload image",
			},
		})
		return
	}

	oldKey := meal.ImageS3Key
	if err := db.Model(&meal).Update("image_s3_key", s3Key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save image reference",
			},
		})
		return
	}
	meal.ImageS3Key = &s3Key

	// Best effort cleanup of the replaced image
	if oldKey != nil && *oldKey != s3Key {
		_ = imageService.DeleteImage(*oldKey)
	}

	attachImageURL(&meal)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Meal image uploaded",
		"data":    meal,
	})
}
