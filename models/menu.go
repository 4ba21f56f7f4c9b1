package models

import (
	"time"
)

// Menu is the set of meals orderable on one calendar date.
// Meals are aggregated by reference, so the same meal can appear on
// many menus. The date is unique: publishing meals for an existing
// date merges into that menu row.
type Menu struct {
	ID        uint      `gorm:"primaryKey" json:"menu_id"`
	Date      time.Time `gorm:"uniqueIndex;not null" json:"date"` // truncated to the calendar day, UTC
	Meals     []Meal    `gorm:"many2many:menu_meals" json:"meals"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Menu model
func (Menu) TableName() string {
	return "menus"
}

// MenuDate truncates a timestamp to the calendar day it falls on, in UTC
func MenuDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
