package models

import (
	"time"
)

// RevokedToken records access tokens invalidated by logout.
// The auth middleware rejects any bearer token found here.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"index;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RevokedToken model
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
