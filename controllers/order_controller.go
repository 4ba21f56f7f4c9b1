package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/book-a-meal/book-a-meal-api/config"
	"github.com/book-a-meal/book-a-meal-api/middleware"
	"github.com/book-a-meal/book-a-meal-api/services"
)

// PlaceOrderRequest represents the request body for placing an order.
// Line fields are loosely typed so non-integer input can be rejected
// with a precise message instead of a generic bind failure.
type PlaceOrderRequest struct {
	Order   []OrderLineInput `json:"order" binding:"required"`
	DueTime string           `json:"due_time" binding:"required"`
}

// OrderLineInput is one requested (meal_id, quantity) pair
type OrderLineInput struct {
	MealID   interface{} `json:"meal_id"`
	Quantity interface{} `json:"quantity"`
}

// UpdateOrderRequest represents the request body for editing one order line
type UpdateOrderRequest struct {
	NewData struct {
		MealID   interface{} `json:"meal_id"`
		Quantity interface{} `json:"quantity"`
	} `json:"new_data" binding:"required"`
}

// RemoveLinesRequest represents the request body for removing order lines
type RemoveLinesRequest struct {
	MealIDs []uint `json:"meal_ids" binding:"required"`
}

// asInt coerces a decoded JSON value into an integer. Floats only pass
// when they carry no fractional part; numeric strings are accepted for
// parity with clients that quote their ids.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func orderServiceFromConfig() *services.OrderService {
	return services.NewOrderService(config.GetDB(), config.GetConfig().EditWindow())
}

// PlaceOrder handles POST /api/v1/orders - builds an order from the menu
// resolved for its due date
func PlaceOrder(c *gin.Context) {
	owner, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	lines := make([]services.OrderLineRequest, 0, len(req.Order))
	for _, input := range req.Order {
		mealID, okMeal := asInt(input.MealID)
		quantity, okQuantity := asInt(input.Quantity)
		if !okMeal || !okQuantity || mealID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Inputs should be integers",
				},
			})
			return
		}
		if quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Quantity should be at least 1",
				},
			})
			return
		}
		lines = append(lines, services.OrderLineRequest{MealID: uint(mealID), Quantity: quantity})
	}

	dueTime, err := services.ParseDueTime(req.DueTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": `Ensure date-time value is of the form "DD-MM-YYYY HH-MM"`,
			},
		})
		return
	}

	orderService := orderServiceFromConfig()
	order, notFound, err := orderService.PlaceOrder(owner, dueTime, lines)
	if err != nil {
		var tooSoon *services.DueTooSoonError
		var noMenu *services.MenuNotAvailableError
		switch {
		case errors.As(err, &tooSoon):
			// Soft rejection, not a hard error
			c.JSON(http.StatusAccepted, gin.H{
				"success": false,
				"message": "Unable to place order",
				"help":    "Order should be due at least 30 minutes from time of placing the order",
				"grace":   tooSoon.Grace(),
			})
		case errors.As(err, &noMenu):
			c.JSON(http.StatusAccepted, gin.H{
				"success": false,
				"message": "Menu for " + noMenu.Date.Format(DateLayout) + " not available",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to place order",
				},
			})
		}
		return
	}

	reportService := services.NewReportService(config.GetDB())
	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"message":         "Order has been placed",
		"order":           reportService.OwnerView(order),
		"meals_not_found": notFound,
	})
}

// ListOrders handles GET /api/v1/orders - the owner's orders, plus the
// caterer aggregate and daily summaries for admins
func ListOrders(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	reportService := services.NewReportService(config.GetDB())
	orders, err := reportService.OwnerOrders(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	response := gin.H{
		"success": true,
		"orders":  orders,
	}

	if user.IsAdmin {
		adminOrders, err := reportService.CatererOrders(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to load caterer orders",
				},
			})
			return
		}
		summaries, err := reportService.DailySummaries()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to load daily summaries",
				},
			})
			return
		}
		response["admin_orders"] = adminOrders
		response["daily_summaries"] = summaries
	}

	c.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:id - one order's detail, visible to
// its owner or any admin
func GetOrder(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be an integer",
			},
		})
		return
	}

	orderService := orderServiceFromConfig()
	order, err := orderService.Get(uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order does not exist",
			},
		})
		return
	}

	if order.OwnerID != user.ID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You may only view your own orders",
			},
		})
		return
	}

	reportService := services.NewReportService(config.GetDB())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   reportService.OwnerView(order),
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - changes one line's quantity
// while the order is still editable
func UpdateOrder(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	mealID, okMeal := asInt(req.NewData.MealID)
	quantity, okQuantity := asInt(req.NewData.Quantity)
	if !okMeal || !okQuantity || mealID < 1 || quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Inputs should be integers",
			},
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be an integer",
			},
		})
		return
	}

	orderService := orderServiceFromConfig()
	order, err := orderService.GetOwned(user, uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "You do not have such an order",
			},
		})
		return
	}

	err = orderService.UpdateLine(order, uint(mealID), quantity, time.Now().UTC())
	if err != nil {
		var closed *services.OrderClosedError
		switch {
		case errors.As(err, &closed):
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Sorry you can not edit this order: " + closed.Reason,
				},
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MEAL_NOT_FOUND",
					"message": "The order has no line for that meal",
				},
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": err.Error(),
				},
			})
		}
		return
	}

	reportService := services.NewReportService(config.GetDB())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order modified successfully",
		"order":   reportService.OwnerView(order),
	})
}

// RemoveOrderLines handles PATCH /api/v1/orders/:id - removes lines by meal
// id while the order is still editable
func RemoveOrderLines(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	var req RemoveLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be an integer",
			},
		})
		return
	}

	orderService := orderServiceFromConfig()
	order, err := orderService.GetOwned(user, uint(orderID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "You do not have such an order",
			},
		})
		return
	}

	if err := orderService.RemoveLines(order, req.MealIDs, time.Now().UTC()); err != nil {
		var closed *services.OrderClosedError
		if errors.As(err, &closed) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Sorry you can not edit this order: " + closed.Reason,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove order lines",
			},
		})
		return
	}

	reportService := services.NewReportService(config.GetDB())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order modified successfully",
		"order":   reportService.OwnerView(order),
	})
}

// ServeOrder handles PATCH /api/v1/orders/serve/:id - marks an order served
// (admin only), which closes it to further owner edits
func ServeOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Order id must be an integer",
			},
		})
		return
	}

	orderService := orderServiceFromConfig()
	order, err := orderService.Serve(uint(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to mark order served",
			},
		})
		return
	}

	reportService := services.NewReportService(config.GetDB())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order processed and served",
		"order":   reportService.OwnerView(order),
	})
}
