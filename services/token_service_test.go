package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/book-a-meal/book-a-meal-api/models"
)

func TestGenerateAndDecodeToken(t *testing.T) {
	user := &models.User{
		ID:           7,
		Username:     "alice",
		IsAdmin:      true,
		IsSuperAdmin: false,
	}

	token, err := GenerateToken("secret", user, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := DecodeToken("secret", token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.False(t, claims.IsSuperAdmin)
}

func TestDecodeTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	token, err := GenerateToken("secret", user, time.Hour)
	assert.NoError(t, err)

	_, err = DecodeToken("other-secret", token)
	assert.Error(t, err)
}

func TestDecodeTokenRejectsExpiredToken(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	token, err := GenerateToken("secret", user, -time.Minute)
	assert.NoError(t, err)

	_, err = DecodeToken("secret", token)
	assert.Error(t, err)
}

func TestDecodeTokenRejectsGarbage(t *testing.T) {
	_, err := DecodeToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}
	_, err := GenerateToken("", user, time.Hour)
	assert.Error(t, err)
}
