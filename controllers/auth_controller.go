package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
	"github.com/book-a-meal/book-a-meal-api/utils"
)

// SignupRequest represents the request body for registering a user
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for logging in.
// Either username or email may be supplied.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/v1/auth/signup - registers a user and logs them in
func Signup(c *gin.Context) {
	var req SignupRequest
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

	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Incomplete details",
			},
		})
		return
	}

	username := strings.ToLower(req.Username)
	email := strings.ToLower(req.Email)
	for _, msg := range []string{
		utils.ValidateUsername(username),
		utils.ValidateEmail(email),
		utils.ValidatePassword(req.Password),
	} {
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": msg,
				},
			})
			return
		}
	}

	db := config.GetDB()
	var count int64
	db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusAccepted, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_EXISTS",
				"message": "Username or Email not available.",
			},
		})
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to process password",
			},
		})
		return
	}

	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	cfg := config.GetConfig()
	token, err := services.GenerateToken(cfg.JWTSecret, &user, cfg.TokenValidity())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue access token",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "User registration successful, and logged in",
		"access_token": token,
		"is_admin":     user.IsAdmin,
		"data":         user,
	})
}

// Login handles POST /api/v1/auth/login - authenticates by username or email
func Login(c *gin.Context) {
	var req LoginRequest
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

	db := config.GetDB()
	var user models.User
	var err error
	switch {
	case req.Username != "":
		err = db.Where("username = ?", strings.ToLower(req.Username)).First(&user).Error
	case req.Email != "":
		err = db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Provide a username or email to login",
			},
		})
		return
	}

	if err != nil || !user.ValidatePassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CREDENTIALS",
				"message": "The username/email or password provided is not correct",
			},
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ACCOUNT_DEACTIVATED",
				"message": "This account has been deactivated",
			},
		})
		return
	}

	cfg := config.GetConfig()
	token, err := services.GenerateToken(cfg.JWTSecret, &user, cfg.TokenValidity())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue access token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Successfully logged in",
		"access_token": token,
		"is_admin":     user.IsAdmin,
	})
}

// Logout handles GET /api/v1/auth/logout - revokes the presented token
func Logout(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
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

	token, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Create(&models.RevokedToken{Token: token}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to revoke token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": user.Username + " has been logged out successfully.",
	})
}
