package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/models"
)

// DueTimeLayout is the fixed wire format for order due times
const DueTimeLayout = "02-01-2006 15-04"

// MinimumNotice is how far in the future an order must be due
const MinimumNotice = 30 * time.Minute

// ErrBadDueTime is returned when a due time does not parse under DueTimeLayout
var ErrBadDueTime = errors.New(`ensure date-time value is of the form "DD-MM-YYYY HH-MM"`)

// DueTooSoonError is a soft rejection: the due time is less than
// MinimumNotice ahead of the placement time.
type DueTooSoonError struct {
	DueTime time.Time
	Now     time.Time
}

func (e *DueTooSoonError) Error() string {
	return "order should be due at least 30 minutes from time of placing the order"
}

// Grace reports how many seconds of notice the request actually gave
func (e *DueTooSoonError) Grace() float64 {
	return e.DueTime.Sub(e.Now).Seconds()
}

// MenuNotAvailableError is a soft rejection: no menu could be resolved
// for the calendar date the order is due on.
type MenuNotAvailableError struct {
	Date time.Time
}

func (e *MenuNotAvailableError) Error() string {
	return fmt.Sprintf("menu for %s not available", e.Date.Format("02-01-2006"))
}

// OrderClosedError is returned when an order can no longer be edited.
// Reason distinguishes an already-served order from an elapsed window.
type OrderClosedError struct {
	Reason string
}

func (e *OrderClosedError) Error() string {
	return e.Reason
}

// OrderLineRequest is one validated (meal, quantity) pair of a placement request
type OrderLineRequest struct {
	MealID   uint
	Quantity int
}

// OrderService builds, edits and reports orders. Editability is bounded
// by editWindow: once it elapses, or an admin marks the order served,
// the order is closed for good.
type OrderService struct {
	db         *gorm.DB
	menus      *MenuService
	editWindow time.Duration
}

// NewOrderService creates an order service backed by the given database
func NewOrderService(db *gorm.DB, editWindow time.Duration) *OrderService {
	return &OrderService{
		db:         db,
		menus:      NewMenuService(db),
		editWindow: editWindow,
	}
}

// ParseDueTime parses a due time under the fixed DD-MM-YYYY HH-MM format
func ParseDueTime(value string) (time.Time, error) {
	due, err := time.ParseInLocation(DueTimeLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, ErrBadDueTime
	}
	return due, nil
}

// PlaceOrder validates the requested lines against the menu resolved for
// the due date and persists the order. Lines whose meal is not orderable
// are collected into the returned not-found list instead of aborting the
// order; every valid line is still created, with the meal's price
// snapshotted onto the line.
func (s *OrderService) PlaceOrder(owner *models.User, dueTime time.Time, lines []OrderLineRequest) (*models.Order, []uint, error) {
	now := time.Now().UTC()
	if dueTime.Sub(now) < MinimumNotice {
		return nil, nil, &DueTooSoonError{DueTime: dueTime, Now: now}
	}

	orderable, err := s.menus.Resolve(dueTime)
	if errors.Is(err, ErrMenuNotFound) {
		return nil, nil, &MenuNotAvailableError{Date: models.MenuDate(dueTime)}
	}
	if err != nil {
		return nil, nil, err
	}

	mealsByID := make(map[uint]models.Meal, len(orderable))
	for _, meal := range orderable {
		mealsByID[meal.ID] = meal
	}

	order := models.Order{
		OwnerID: owner.ID,
		DueTime: dueTime,
	}
	notFound := []uint{}
	for _, line := range lines {
		meal, ok := mealsByID[line.MealID]
		if !ok {
			notFound = append(notFound, line.MealID)
			continue
		}
		order.Lines = append(order.Lines, models.OrderLine{
			MealID:    meal.ID,
			Quantity:  line.Quantity,
			UnitPrice: meal.Price,
		})
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}
	if err := s.db.Preload("Lines.Meal").Preload("Owner").First(&order, order.ID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, notFound, nil
}

// IsEditable reports whether the order is still open for owner edits at
// the given instant. An order closes when it is marked served or when
// the edit window elapses, and never reopens.
func (s *OrderService) IsEditable(order *models.Order, now time.Time) bool {
	return !order.Served && now.Sub(order.CreatedAt) < s.editWindow
}

// checkEditable returns an OrderClosedError naming the reason the order
// can no longer be edited, or nil while it is still open.
func (s *OrderService) checkEditable(order *models.Order, now time.Time) error {
	if order.Served {
		return &OrderClosedError{Reason: "order has already been served"}
	}
	if now.Sub(order.CreatedAt) >= s.editWindow {
		return &OrderClosedError{Reason: "the editing window for this order has elapsed"}
	}
	return nil
}

// GetOwned loads an order owned by the given user, with lines and meals
func (s *OrderService) GetOwned(owner *models.User, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Lines.Meal").Preload("Owner").
		Where("owner_id = ?", owner.ID).First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Get loads any order by id, with lines and meals
func (s *OrderService) Get(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Lines.Meal").Preload("Owner").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateLine changes the quantity of the order's line for the given meal.
// Gated by the editability rule.
func (s *OrderService) UpdateLine(order *models.Order, mealID uint, quantity int, now time.Time) error {
	if err := s.checkEditable(order, now); err != nil {
		return err
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	for i := range order.Lines {
		if order.Lines[i].MealID == mealID {
			order.Lines[i].Quantity = quantity
			if err := s.db.Save(&order.Lines[i]).Error; err != nil {
				return fmt.Errorf("failed to update order line: %w", err)
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// RemoveLines drops the order's lines matching the given meal ids.
// Gated by the editability rule. Unknown meal ids are ignored.
func (s *OrderService) RemoveLines(order *models.Order, mealIDs []uint, now time.Time) error {
	if err := s.checkEditable(order, now); err != nil {
		return err
	}

	if err := s.db.Where("order_id = ? AND meal_id IN ?", order.ID, mealIDs).
		Delete(&models.OrderLine{}).Error; err != nil {
		return fmt.Errorf("failed to remove order lines: %w", err)
	}

	kept := order.Lines[:0]
	removed := make(map[uint]bool, len(mealIDs))
	for _, id := range mealIDs {
		removed[id] = true
	}
	for _, line := range order.Lines {
		if !removed[line.MealID] {
			kept = append(kept, line)
		}
	}
	order.Lines = kept
	return nil
}

// Serve marks the order as served, closing it to further owner edits
func (s *OrderService) Serve(orderID uint) (*models.Order, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(order).Update("served", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark order served: %w", err)
	}
	order.Served = true
	return order, nil
}
