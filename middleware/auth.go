package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
)

// EnsureValidToken is a middleware that checks the bearer token on the
// Authorization header, rejects revoked tokens and loads the user record
// into the request context.
func EnsureValidToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Authorization token not found or invalid",
				},
			})
			c.Abort()
			return
		}
		tokenString := parts[1]

		db := config.GetDB()
		var revoked int64
		if err := db.Model(&models.RevokedToken{}).Where("token = ?", tokenString).Count(&revoked).Error; err != nil {
			// Fail closed: an unreadable revocation store must not let
			// logged-out tokens through
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Could not verify token status",
				},
			})
			c.Abort()
			return
		}
		if revoked > 0 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TOKEN_REVOKED",
					"message": "Token has been revoked. Please login again",
				},
			})
			c.Abort()
			return
		}

		cfg := config.GetConfig()
		claims, err := services.DecodeToken(cfg.JWTSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Invalid token. Please register or login",
				},
			})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("username = ? AND is_active = ?", claims.Username, true).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "Account not found or deactivated",
				},
			})
			c.Abort()
			return
		}

		c.Set("current_user", &user)
		c.Set("access_token", tokenString)
		c.Next()
	}
}

// RequireAdmin allows only caterer/admin accounts through.
// Must be registered after EnsureValidToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Admin privileges required",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin allows only super admin accounts through.
// Must be registered after EnsureValidToken.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil || !user.IsSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Super admin privileges required",
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from the Gin context
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User in context has unexpected type"}
	}

	return user, nil
}

// GetAccessToken extracts the raw bearer token from the Gin context
func GetAccessToken(c *gin.Context) (string, error) {
	value, exists := c.Get("access_token")
	if !exists {
		return "", &AuthError{Code: "MISSING_TOKEN", Message: "Access token not found in context"}
	}

	token, ok := value.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_TOKEN", Message: "Access token is not a string"}
	}

	return token, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
