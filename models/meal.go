package models

import (
	"time"

	"gorm.io/gorm"
)

// Meal represents a caterer-owned catalog item
type Meal struct {
	ID          uint           `gorm:"primaryKey" json:"meal_id"`
	Name        string         `gorm:"not null;index:idx_meals_caterer_name" json:"name"` // unique per caterer among live rows, enforced in the controllers
	Price       float64        `gorm:"not null;check:price >= 0" json:"price"`
	Description string         `gorm:"not null" json:"description"`
	Default     bool           `gorm:"not null;default:false" json:"menu_default"` // orderable regardless of menu
	ImageS3Key  *string        `json:"image_s3_key,omitempty"`
	ImageURL    *string        `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	CatererID   uint           `gorm:"not null;index;index:idx_meals_caterer_name" json:"caterer_id"`
	Caterer     User           `gorm:"foreignKey:CatererID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Meal model
func (Meal) TableName() string {
	return "meals"
}
