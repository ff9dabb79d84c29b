package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahidhasan/mealbox-app/models"
	"github.com/nahidhasan/mealbox-app/utils"
)

// PaymentGateway is what the order factory needs from the payment processor.
type PaymentGateway interface {
	InitiatePayment(req InitiatePaymentRequest) (*InitiateResult, error)
	VerifyPayment(spOrderID string) (*PaymentResult, error)
}

// OrderService turns carts into immutable priced orders and applies payment
// verification results.
type OrderService struct {
	db       *gorm.DB
	gateway  PaymentGateway
	notifier *Notifier
}

func NewOrderService(db *gorm.DB, gateway PaymentGateway) *OrderService {
	return &OrderService{
		db:       db,
		gateway:  gateway,
		notifier: NewNotifier(),
	}
}

// DeliveryDetails is what the customer fills in at checkout.
type DeliveryDetails struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	City         string
	ZipCode      string
	DeliveryDate string
	DeliverySlot string
}

// CreateOrderResult is the outcome of order creation. Order is always set once
// the order has been persisted, even when the gateway call afterwards failed.
type CreateOrderResult struct {
	CheckoutURL string
	Order       *models.Order
}

// CreateFromCart snapshots the customer's cart into an order.
//
// Unit price and provider are re-resolved from the meal catalog at order time;
// the cart's cached copies are not trusted for money that flows downstream.
// Order persistence and cart deletion happen in one database transaction, so a
// crash cannot leave a cleared cart without an order or both present. The
// gateway initiate runs after commit: when it fails the order stays Pending
// without a checkout URL and the error is surfaced so the client can retry.
func (s *OrderService) CreateFromCart(customerID uint, details DeliveryDetails, clientIP string) (*CreateOrderResult, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Where("customer_id = ?", customerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(cart.Items) == 0) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	now := time.Now()
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		var meal models.Meal
		if err := s.db.Preload("Provider").First(&meal, ci.MealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: meal %d no longer exists", ErrMealNotFound, ci.MealID)
			}
			return nil, fmt.Errorf("failed to resolve meal %d: %w", ci.MealID, err)
		}
		if !meal.Available {
			return nil, fmt.Errorf("%w: %s was delisted", ErrMealUnavailable, meal.Name)
		}
		items = append(items, models.OrderItem{
			MealID:        meal.ID,
			MealName:      meal.Name,
			ProviderID:    meal.ProviderID,
			ProviderName:  meal.Provider.Name,
			UnitPrice:     meal.Price,
			Quantity:      ci.Quantity,
			Customization: ci.Customization,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	pricing := CalculateOrderPricing(items)

	order := models.Order{
		CustomerID:     customerID,
		TrackingNumber: utils.GenerateTrackingNumber(now),
		Status:         models.OrderStatusPending,
		CurrentStage:   models.StagePlaced,
		Subtotal:       pricing.Subtotal,
		Tax:            pricing.Tax,
		Shipping:       pricing.Shipping,
		Total:          pricing.Total,
		Name:           details.Name,
		Email:          details.Email,
		Phone:          details.Phone,
		Address:        details.Address,
		City:           details.City,
		ZipCode:        details.ZipCode,
		DeliveryDate:   details.DeliveryDate,
		DeliverySlot:   details.DeliverySlot,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx := s.db.Begin()

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.Create(&items[i]).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	placed := models.TrackingUpdate{
		OrderID:   order.ID,
		Stage:     models.StagePlaced,
		Message:   "Order has been placed",
		CreatedAt: now,
	}
	if err := tx.Create(&placed).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record placed stage: %w", err)
	}

	// Cart goes only after the order is durable, and in the same transaction.
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := tx.Delete(&models.Cart{}, cart.ID).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	order.TrackingUpdates = []models.TrackingUpdate{placed}

	s.notifier.OrderPlaced(&order)

	initiated, err := s.gateway.InitiatePayment(InitiatePaymentRequest{
		OrderID:       order.TrackingNumber,
		Amount:        order.Total,
		CustomerName:  order.Name,
		CustomerEmail: order.Email,
		CustomerPhone: order.Phone,
		Address:       order.Address,
		City:          order.City,
		ZipCode:       order.ZipCode,
		ClientIP:      clientIP,
	})
	if err != nil {
		// The order stands and is retryable; never pretend the payment session
		// exists.
		return &CreateOrderResult{Order: &order}, err
	}

	// Best effort: a failed reference save must not undo the order.
	order.Transaction.ID = initiated.SPOrderID
	order.Transaction.TransactionStatus = initiated.RawStatus
	if err := s.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"transaction_id":                 initiated.SPOrderID,
		"transaction_transaction_status": initiated.RawStatus,
	}).Error; err != nil {
		log.Printf("failed to store gateway reference for order %d: %v", order.ID, err)
	}

	return &CreateOrderResult{CheckoutURL: initiated.CheckoutURL, Order: &order}, nil
}

// VerifyPayment asks the gateway for the settlement result of spOrderID and
// applies it to the owning order. Idempotent: the transaction record is
// overwritten, never appended, and the estimated delivery date is only set
// while nil, so repeat calls converge on the same state. Gateway failures
// leave the order untouched.
func (s *OrderService) VerifyPayment(spOrderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").Where("transaction_id = ?", spOrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	result, err := s.gateway.VerifyPayment(spOrderID)
	if err != nil {
		return nil, err
	}

	order.Transaction = models.Transaction{
		ID:                spOrderID,
		TransactionStatus: result.TransactionStatus,
		BankStatus:        result.BankStatus,
		SPCode:            result.SPCode,
		SPMessage:         result.SPMessage,
		Method:            result.Method,
		DateTime:          result.DateTime,
	}

	switch result.BankStatus {
	case "Success":
		order.Status = models.OrderStatusPaid
		if order.EstimatedDeliveryDate == nil {
			eta := time.Now().Add(7 * 24 * time.Hour)
			order.EstimatedDeliveryDate = &eta
		}
	case "Failed":
		// Payment attempt failed; the order stays Pending and retryable.
		order.EstimatedDeliveryDate = nil
	case "Cancel":
		order.Status = models.OrderStatusCancelled
		order.CurrentStage = models.StageCancelled
		order.EstimatedDeliveryDate = nil
	default:
		// Unknown bank status: keep the last known payment state.
		order.EstimatedDeliveryDate = nil
	}

	order.UpdatedAt = time.Now()
	if err := s.db.Omit(clause.Associations).Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to apply payment result: %w", err)
	}

	if order.Status == models.OrderStatusPaid {
		s.notifier.PaymentConfirmed(&order)
	}

	return &order, nil
}

// PendingPaymentChecker periodically re-verifies Pending orders that already
// hold a gateway reference, so payments settled while the customer never came
// back through the return URL still land.
func (s *OrderService) PendingPaymentChecker() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.CheckPendingPayments()
	}
}

// CheckPendingPayments runs one sweep over verifiable Pending orders.
func (s *OrderService) CheckPendingPayments() {
	var orders []models.Order
	err := s.db.Where("status = ? AND transaction_id <> ''", models.OrderStatusPending).Find(&orders).Error
	if err != nil {
		log.Printf("Error listing pending orders: %v", err)
		return
	}

	for _, order := range orders {
		if _, err := s.VerifyPayment(order.Transaction.ID); err != nil {
			if errors.Is(err, ErrGatewayUnavailable) {
				// Unknown outcome; the next sweep retries.
				continue
			}
			log.Printf("Error verifying payment for order %d: %v", order.ID, err)
		}
	}
}

// StartPendingPaymentChecker starts the background sweep goroutine.
func (s *OrderService) StartPendingPaymentChecker() {
	go s.PendingPaymentChecker()
	log.Println("Pending payment checker started")
}
