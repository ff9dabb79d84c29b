package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/middlewares"
	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/services"
	"github.com/nahidhasan/mealbox-app/utils"
)

type OrderController struct {
	DB       *gorm.DB
	orders   *services.OrderService
	repo     *services.OrderRepository
	tracking *services.TrackingService
}

func NewOrderController(db *gorm.DB, gateway services.PaymentGateway) *OrderController {
	return &OrderController{
		DB:       db,
		orders:   services.NewOrderService(db, gateway),
		repo:     services.NewOrderRepository(db),
		tracking: services.NewTrackingService(db),
	}
}

type orderSummary struct {
	OrderID        uint    `json:"order_id"`
	TrackingNumber string  `json:"tracking_number"`
	TotalPrice     float64 `json:"total_price"`
	Status         string  `json:"status"`
}

func summarize(order *models.Order) orderSummary {
	return orderSummary{
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		TotalPrice:     order.Total,
		Status:         order.Status,
	}
}

// CreateFromCart -> POST /orders/from-cart. On gateway failure the order is
// still created and returned so the client can retry payment initiation; the
// 502 makes the two outcomes distinguishable.
func (oc *OrderController) CreateFromCart(c *gin.Context) {
	customerID := c.GetUint("userID")

	type request struct {
		Name         string `json:"name" binding:"required"`
		Email        string `json:"email" binding:"required,email"`
		Phone        string `json:"phone" binding:"required"`
		Address      string `json:"address" binding:"required"`
		City         string `json:"city"`
		ZipCode      string `json:"zip_code"`
		DeliveryDate string `json:"delivery_date"`
		DeliverySlot string `json:"delivery_slot"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := oc.orders.CreateFromCart(customerID, services.DeliveryDetails{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		DeliveryDate: req.DeliveryDate,
		DeliverySlot: req.DeliverySlot,
	}, c.ClientIP())

	if err != nil {
		middlewares.RecordOrderOperation("create", false)
		if result != nil && result.Order != nil {
			// Order persisted, payment session not started.
			utils.RespondJSON(c, statusForError(err), err.Error(), gin.H{
				"order": summarize(result.Order),
			})
			return
		}
		utils.RespondError(c, statusForError(err), err)
		return
	}

	middlewares.RecordOrderOperation("create", true)
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"checkout_url": result.CheckoutURL,
		"order":        summarize(result.Order),
	})
}

// VerifyPayment -> GET /orders/verify?order_id=<gateway order id>. Applies the
// gateway's settlement result; safe to call repeatedly.
func (oc *OrderController) VerifyPayment(c *gin.Context) {
	spOrderID := c.Query("order_id")
	if spOrderID == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order_id is required"))
		return
	}

	order, err := oc.orders.VerifyPayment(spOrderID)
	if err != nil {
		middlewares.RecordOrderOperation("verify", false)
		utils.RespondError(c, statusForError(err), err)
		return
	}

	middlewares.RecordOrderOperation("verify", true)
	utils.RespondJSON(c, http.StatusOK, "Payment verified", gin.H{
		"order":       order,
		"transaction": order.Transaction,
	})
}

// UpdateTracking -> PATCH /orders/:order_id/tracking. Providers may only move
// orders that carry one of their own meals; admins may move any.
func (oc *OrderController) UpdateTracking(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	type request struct {
		Stage   string `json:"stage" binding:"required"`
		Message string `json:"message"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role, _ := c.Get("role")
	if role == models.RoleProvider {
		providerID := c.GetUint("userID")
		var owned int64
		oc.DB.Model(&models.OrderItem{}).
			Where("order_id = ? AND provider_id = ?", orderID, providerID).
			Count(&owned)
		if owned == 0 {
			utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
			return
		}
	}

	order, err := oc.tracking.Advance(uint(orderID), models.TrackingStage(req.Stage), req.Message)
	if err != nil {
		middlewares.RecordOrderOperation("tracking", false)
		utils.RespondError(c, statusForError(err), err)
		return
	}

	middlewares.RecordOrderOperation("tracking", true)
	utils.RespondJSON(c, http.StatusOK, "Tracking updated", gin.H{
		"order":           order,
		"tracking_stages": order.TrackingFlags(),
	})
}

// TrackByNumber -> GET /orders/tracking/:tracking_number. Public and
// read-only; exposes delivery progress, not payment internals.
func (oc *OrderController) TrackByNumber(c *gin.Context) {
	trackingNumber := c.Param("tracking_number")

	order, err := oc.repo.GetByTrackingNumber(trackingNumber)
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order tracking", gin.H{
		"tracking_number":         order.TrackingNumber,
		"status":                  order.Status,
		"current_stage":           order.CurrentStage,
		"tracking_stages":         order.TrackingFlags(),
		"tracking_updates":        order.TrackingUpdates,
		"estimated_delivery_date": order.EstimatedDeliveryDate,
	})
}

// GetMyOrders -> GET /orders/my-orders, newest first.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	customerID := c.GetUint("userID")

	orders, err := oc.repo.ListByCustomer(customerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Your orders", orders)
}

// GetProviderOrders -> GET /provider/orders. An order with meals from several
// providers appears in each provider's list.
func (oc *OrderController) GetProviderOrders(c *gin.Context) {
	providerID := c.GetUint("userID")

	orders, err := oc.repo.ListByProvider(providerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Provider orders", orders)
}

// GetAllOrders -> admin listing.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.repo.ListAll()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID -> detail of one order for its customer or an admin.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	order, err := oc.repo.GetByID(uint(orderID))
	if err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}

	role, _ := c.Get("role")
	if role != models.RoleAdmin && order.CustomerID != c.GetUint("userID") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// DeleteOrder -> explicit administrative delete; the only way an order is ever
// removed.
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	orderID, _ := strconv.Atoi(c.Param("order_id"))

	if err := oc.repo.Delete(uint(orderID)); err != nil {
		utils.RespondError(c, statusForError(err), err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"order_id": orderID})
}
