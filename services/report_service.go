package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/models"
)

// OrderLineView is one line of an order detail view
type OrderLineView struct {
	MealID    uint    `json:"meal_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderView is the full detail of a single order, shaped for its owner
type OrderView struct {
	OrderID     uint            `json:"order_id"`
	TimeOrdered string          `json:"time_ordered"`
	DueTime     string          `json:"due_time"`
	OrderedBy   string          `json:"ordered_by"`
	Served      bool            `json:"served"`
	Lines       []OrderLineView `json:"meals"`
	Total       float64         `json:"total"`
}

// CatererOrderEntry is one order touching a caterer's meal, keyed under
// the meal's name in the caterer view
type CatererOrderEntry struct {
	OrderID     uint   `json:"order_id"`
	TimeOrdered string `json:"time_ordered"`
	DueTime     string `json:"due_time"`
	Quantity    int    `json:"quantity"`
	Customer    string `json:"customer"`
}

// DailySummaryEntry is one order's contribution to a day's reconciliation
type DailySummaryEntry struct {
	OrderID uint    `json:"order_id"`
	Total   float64 `json:"total"`
}

// ReportService shapes order data into the owner, caterer and daily
// summary views. It performs no authorization; callers gate access.
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a report service backed by the given database
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// OwnerView shapes a single loaded order into its detail view
func (s *ReportService) OwnerView(order *models.Order) OrderView {
	view := OrderView{
		OrderID:     order.ID,
		TimeOrdered: order.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		DueTime:     order.DueTime.UTC().Format("2006-01-02 15:04:05"),
		OrderedBy:   order.Owner.Username,
		Served:      order.Served,
		Lines:       []OrderLineView{},
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, OrderLineView{
			MealID:    line.MealID,
			Name:      line.Meal.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		})
		view.Total += line.Subtotal()
	}
	return view
}

// OwnerOrders returns the detail views of every order owned by the user
func (s *ReportService) OwnerOrders(owner *models.User) ([]OrderView, error) {
	var orders []models.Order
	err := s.db.Preload("Lines.Meal").Preload("Owner").
		Where("owner_id = ?", owner.ID).Order("id").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, s.OwnerView(&orders[i]))
	}
	return views, nil
}

// CatererOrders returns every order containing at least one of the
// caterer's meals, grouped by meal name.
func (s *ReportService) CatererOrders(caterer *models.User) (map[string][]CatererOrderEntry, error) {
	var lines []models.OrderLine
	err := s.db.Preload("Meal").
		Joins("JOIN meals ON meals.id = order_lines.meal_id").
		Where("meals.caterer_id = ?", caterer.ID).
		Order("order_lines.order_id").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	grouped := make(map[string][]CatererOrderEntry)
	for _, line := range lines {
		var order models.Order
		if err := s.db.Preload("Owner").First(&order, line.OrderID).Error; err != nil {
			continue
		}
		grouped[line.Meal.Name] = append(grouped[line.Meal.Name], CatererOrderEntry{
			OrderID:     order.ID,
			TimeOrdered: order.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			DueTime:     order.DueTime.UTC().Format("2006-01-02 15:04:05"),
			Quantity:    line.Quantity,
			Customer:    order.Owner.Username,
		})
	}
	return grouped, nil
}

// DailySummaries groups all orders by the calendar date they were placed
// on, each group carrying {order_id, total} pairs for end-of-day
// reconciliation.
func (s *ReportService) DailySummaries() (map[string][]DailySummaryEntry, error) {
	var orders []models.Order
	if err := s.db.Preload("Lines").Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	summaries := make(map[string][]DailySummaryEntry)
	for i := range orders {
		date := orders[i].CreatedAt.UTC().Format("2006-01-02")
		summaries[date] = append(summaries[date], DailySummaryEntry{
			OrderID: orders[i].ID,
			Total:   orders[i].Total(),
		})
	}
	return summaries, nil
}
