package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/models"
)

// ErrMenuNotFound is returned when no menu exists for a date and no
// default meals are configured either.
var ErrMenuNotFound = errors.New("no menu available for the requested date")

// ErrEmptyMealList is returned when a menu publish request carries no meals
var ErrEmptyMealList = errors.New("menu cannot be empty")

// NotOwnerError is returned when a caterer tries to publish meals they do not own
type NotOwnerError struct {
	MealIDs []uint
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("meals not owned by requesting caterer: %v", e.MealIDs)
}

// MenuService resolves and publishes the menu for a calendar date
type MenuService struct {
	db *gorm.DB
}

// NewMenuService creates a menu service backed by the given database
func NewMenuService(db *gorm.DB) *MenuService {
	return &MenuService{db: db}
}

// Resolve returns the set of meals orderable on the given date: the meals
// attached to that date's menu plus every meal flagged as a default.
// Returns ErrMenuNotFound when both sets are empty.
func (s *MenuService) Resolve(date time.Time) ([]models.Meal, error) {
	day := models.MenuDate(date)

	var menu models.Menu
	err := s.db.Preload("Meals").Where("date = ?", day).First(&menu).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	var defaults []models.Meal
	if err := s.db.Where("\"default\" = ?", true).Find(&defaults).Error; err != nil {
		return nil, fmt.Errorf("failed to load default meals: %w", err)
	}

	// Union, menu meals first. Defaults already on the menu are skipped.
	seen := make(map[uint]bool, len(menu.Meals))
	meals := make([]models.Meal, 0, len(menu.Meals)+len(defaults))
	for _, meal := range menu.Meals {
		seen[meal.ID] = true
		meals = append(meals, meal)
	}
	for _, meal := range defaults {
		if !seen[meal.ID] {
			meals = append(meals, meal)
		}
	}

	if len(meals) == 0 {
		return nil, ErrMenuNotFound
	}
	return meals, nil
}

// Publish attaches the caterer's meals to the menu for the given date.
// A menu row is created for the date if none exists; publishing to an
// existing date merges the new meals into the existing set instead of
// replacing it. Every requested meal must belong to the caterer.
func (s *MenuService) Publish(caterer *models.User, mealIDs []uint, date time.Time) (*models.Menu, error) {
	if len(mealIDs) == 0 {
		return nil, ErrEmptyMealList
	}

	var meals []models.Meal
	if err := s.db.Where("id IN ?", mealIDs).Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	owned := make(map[uint]bool, len(meals))
	for _, meal := range meals {
		if meal.CatererID == caterer.ID {
			owned[meal.ID] = true
		}
	}
	var rejected []uint
	for _, id := range mealIDs {
		if !owned[id] {
			rejected = append(rejected, id)
		}
	}
	if len(rejected) > 0 {
		return nil, &NotOwnerError{MealIDs: rejected}
	}

	day := models.MenuDate(date)
	var menu models.Menu
	err := s.db.Preload("Meals").Where("date = ?", day).First(&menu).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		menu = models.Menu{Date: day}
		if err := s.db.Create(&menu).Error; err != nil {
			return nil, fmt.Errorf("failed to create menu: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	// Merge: only append meals not already on the menu
	existing := make(map[uint]bool, len(menu.Meals))
	for _, meal := range menu.Meals {
		existing[meal.ID] = true
	}
	var added []models.Meal
	for _, meal := range meals {
		if !existing[meal.ID] {
			added = append(added, meal)
		}
	}
	if len(added) > 0 {
		if err := s.db.Model(&menu).Association("Meals").Append(added); err != nil {
			return nil, fmt.Errorf("failed to attach meals to menu: %w", err)
		}
	}

	if err := s.db.Preload("Meals").First(&menu, menu.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload menu: %w", err)
	}
	return &menu, nil
}
