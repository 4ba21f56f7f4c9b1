package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a meal order placed by a user
type Order struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OwnerID   uint           `gorm:"not null;index" json:"owner_id"`
	Owner     User           `gorm:"foreignKey:OwnerID" json:"-"`
	DueTime   time.Time      `gorm:"not null" json:"due_time"`
	Served    bool           `gorm:"not null;default:false" json:"served"`
	Lines     []OrderLine    `gorm:"foreignKey:OrderID" json:"lines"`
	CreatedAt time.Time      `json:"created_at"` // placement time
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderLine links one order to one meal with a quantity.
// UnitPrice is the meal price captured at placement time, so later
// price edits do not rewrite totals on already-placed orders.
type OrderLine struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	MealID    uint    `gorm:"not null;index" json:"meal_id"`
	Meal      Meal    `gorm:"foreignKey:MealID" json:"-"`
	Quantity  int     `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}

// TableName specifies the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}

// Subtotal returns quantity times the snapshotted unit price
func (l *OrderLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Total sums the subtotals of all lines on the order
func (o *Order) Total() float64 {
	var total float64
	for i := range o.Lines {
		total += o.Lines[i].Subtotal()
	}
	return total
}
