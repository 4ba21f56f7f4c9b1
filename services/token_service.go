package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/book-a-meal/book-a-meal-api/models"
)

// TokenClaims includes the registered JWT claims plus the application's
// role flags, so guards can make decisions without a database lookup.
type TokenClaims struct {
	jwt.RegisteredClaims
	Username     string `json:"username"`
	UserID       uint   `json:"user_id"`
	IsAdmin      bool   `json:"admin"`
	IsSuperAdmin bool   `json:"superuser"`
}

// GenerateToken issues a signed HS256 access token for the given user
func GenerateToken(secret string, user *models.User, validity time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("token secret is not configured")
	}

	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Username:     user.Username,
		UserID:       user.ID,
		IsAdmin:      user.IsAdmin,
		IsSuperAdmin: user.IsSuperAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// DecodeToken validates a signed access token and returns its claims.
// It rejects tokens signed with anything other than HMAC, expired tokens
// and tokens with a bad signature.
func DecodeToken(secret, tokenString string) (*TokenClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
