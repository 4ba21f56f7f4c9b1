package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/models"
	"github.com/book-a-meal/book-a-meal-api/services"
)

// TestJWTSecret is the signing secret used across test suites
const TestJWTSecret = "test-secret-not-for-production"

// TestConfig returns a configuration suitable for test runs
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:          "sqlite://:memory:",
		Port:                 "8080",
		GoEnv:                "test",
		JWTSecret:            TestJWTSecret,
		TokenValidityMinutes: 120,
		EditWindowSeconds:    1800,
	}
}

// UseTestConfig installs a test configuration and returns it
func UseTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := TestConfig()
	config.SetConfig(cfg)
	return cfg
}

// TokenFor issues a valid access token for the given user
func TokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := services.GenerateToken(TestJWTSecret, user, 2*time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return token
}

// AuthAs returns a middleware that installs the given user in the request
// context the way middleware.EnsureValidToken does, skipping the token
// checks. Use it to exercise controllers in isolation.
func AuthAs(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("current_user", user)
		c.Set("access_token", "test-token")
		c.Next()
	}
}
