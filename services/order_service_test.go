package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/models"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{}, &models.Meal{}, &models.Menu{},
		&models.Order{}, &models.OrderLine{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createCustomer(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// publishTestMenu sets up a caterer with meals and a menu on the calendar
// date of the given due time. Returns the meals in creation order.
func publishTestMenu(t *testing.T, db *gorm.DB, due time.Time, prices map[string]float64) map[string]*models.Meal {
	t.Helper()
	caterer := createCaterer(t, db, "chef-"+due.Format("20060102"))
	meals := make(map[string]*models.Meal, len(prices))
	ids := []uint{}
	for name, price := range prices {
		meal := createMeal(t, db, caterer, name, price, false)
		meals[name] = meal
		ids = append(ids, meal.ID)
	}
	if _, err := NewMenuService(db).Publish(caterer, ids, due); err != nil {
		t.Fatalf("Failed to publish menu: %v", err)
	}
	return meals
}

func TestPlaceOrderComputesTotalFromSnapshotPrices(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0, "meal-b": 5.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, notFound, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 2},
		{MealID: meals["meal-b"].ID, Quantity: 1},
	})

	assert.NoError(t, err)
	assert.Empty(t, notFound)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, 25.0, order.Total())
}

func TestPlaceOrderSnapshotSurvivesPriceEdit(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 2},
	})
	assert.NoError(t, err)

	// Raising the meal price afterwards must not rewrite the order total
	db.Model(meals["meal-a"]).Update("price", 100.0)

	reloaded, err := svc.Get(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 20.0, reloaded.Total())
}

func TestPlaceOrderPartialSuccess(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, notFound, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
		{MealID: 999, Quantity: 1},
		{MealID: 1000, Quantity: 3},
	})

	assert.NoError(t, err)
	assert.Len(t, order.Lines, 1, "Valid lines still commit")
	assert.Equal(t, []uint{999, 1000}, notFound)
}

func TestPlaceOrderAllLinesUnknownStillCreatesOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, notFound, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: 999, Quantity: 1},
	})

	assert.NoError(t, err)
	assert.Len(t, order.Lines, 0)
	assert.Equal(t, []uint{999}, notFound)
	assert.NotZero(t, order.ID, "Order row is still created")
}

func TestPlaceOrderRejectsDueTimeTooSoon(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(10 * time.Minute)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	_, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
	})

	var tooSoon *DueTooSoonError
	assert.ErrorAs(t, err, &tooSoon)
	assert.Less(t, tooSoon.Grace(), (30 * time.Minute).Seconds())
}

func TestPlaceOrderRejectedRegardlessOfLineValidity(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(29 * time.Minute)

	// Even nonsense lines meet the same rejection when the notice is short
	svc := NewOrderService(db, 30*time.Minute)
	_, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{{MealID: 999, Quantity: 1}})

	var tooSoon *DueTooSoonError
	assert.ErrorAs(t, err, &tooSoon)
}

func TestPlaceOrderNoMenuForDate(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)

	svc := NewOrderService(db, 30*time.Minute)
	_, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{{MealID: 1, Quantity: 1}})

	var noMenu *MenuNotAvailableError
	assert.ErrorAs(t, err, &noMenu)
}

func TestIsEditableWithinWindow(t *testing.T) {
	svc := NewOrderService(nil, 30*time.Minute)
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	order := &models.Order{CreatedAt: placed}

	assert.True(t, svc.IsEditable(order, placed.Add(10*time.Minute)))
	assert.True(t, svc.IsEditable(order, placed.Add(29*time.Minute+59*time.Second)))
}

func TestIsEditableClosesWhenWindowElapses(t *testing.T) {
	svc := NewOrderService(nil, 30*time.Minute)
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	order := &models.Order{CreatedAt: placed}

	// Exactly at the boundary the order is closed, and it never reopens
	assert.False(t, svc.IsEditable(order, placed.Add(30*time.Minute)))
	assert.False(t, svc.IsEditable(order, placed.Add(30*time.Minute+time.Second)))
	assert.False(t, svc.IsEditable(order, placed.Add(24*time.Hour)))
}

func TestIsEditableFalseOnceServed(t *testing.T) {
	svc := NewOrderService(nil, 30*time.Minute)
	placed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	order := &models.Order{CreatedAt: placed, Served: true}

	// Served closes the order for every instant, even inside the window
	assert.False(t, svc.IsEditable(order, placed))
	assert.False(t, svc.IsEditable(order, placed.Add(time.Minute)))
	assert.False(t, svc.IsEditable(order, placed.Add(time.Hour)))
}

func TestUpdateLineChangesQuantity(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
	})
	assert.NoError(t, err)

	err = svc.UpdateLine(order, meals["meal-a"].ID, 3, time.Now().UTC())
	assert.NoError(t, err)

	reloaded, err := svc.Get(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, reloaded.Lines[0].Quantity)
	assert.Equal(t, 30.0, reloaded.Total())
}

func TestUpdateLineForbiddenAfterWindow(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
	})
	assert.NoError(t, err)

	later := order.CreatedAt.Add(30*time.Minute + time.Second)
	err = svc.UpdateLine(order, meals["meal-a"].ID, 3, later)

	var closed *OrderClosedError
	assert.ErrorAs(t, err, &closed)
	assert.Contains(t, closed.Reason, "window")
}

func TestRemoveLinesForbiddenOnceServed(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
	})
	assert.NoError(t, err)

	_, err = svc.Serve(order.ID)
	assert.NoError(t, err)

	// Still inside the time window, but served wins
	order, err = svc.Get(order.ID)
	assert.NoError(t, err)
	err = svc.RemoveLines(order, []uint{meals["meal-a"].ID}, time.Now().UTC())

	var closed *OrderClosedError
	assert.ErrorAs(t, err, &closed)
	assert.Contains(t, closed.Reason, "served")
}

func TestRemoveLinesDropsRequestedMeals(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0, "meal-b": 5.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 2},
		{MealID: meals["meal-b"].ID, Quantity: 1},
	})
	assert.NoError(t, err)

	err = svc.RemoveLines(order, []uint{meals["meal-b"].ID}, time.Now().UTC())
	assert.NoError(t, err)

	reloaded, err := svc.Get(order.ID)
	assert.NoError(t, err)
	assert.Len(t, reloaded.Lines, 1)
	assert.Equal(t, meals["meal-a"].ID, reloaded.Lines[0].MealID)
	assert.Equal(t, 20.0, reloaded.Total())
}

func TestServeMarksOrderServed(t *testing.T) {
	db := setupOrderTestDB(t)
	owner := createCustomer(t, db, "diner")
	due := time.Now().UTC().Add(2 * time.Hour)
	meals := publishTestMenu(t, db, due, map[string]float64{"meal-a": 10.0})

	svc := NewOrderService(db, 30*time.Minute)
	order, _, err := svc.PlaceOrder(owner, due, []OrderLineRequest{
		{MealID: meals["meal-a"].ID, Quantity: 1},
	})
	assert.NoError(t, err)

	served, err := svc.Serve(order.ID)
	assert.NoError(t, err)
	assert.True(t, served.Served)

	reloaded, err := svc.Get(order.ID)
	assert.NoError(t, err)
	assert.True(t, reloaded.Served)
}

func TestParseDueTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "01-05-2024 12-00", wantErr: false},
		{name: "iso format rejected", value: "2024-05-01 12:00", wantErr: true},
		{name: "missing time", value: "01-05-2024", wantErr: true},
		{name: "colon separator rejected", value: "01-05-2024 12:00", wantErr: true},
		{name: "garbage", value: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseDueTime(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadDueTime)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), parsed)
			}
		})
	}
}
