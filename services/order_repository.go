package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/models"
)

// OrderRepository holds the order queries the dashboards and the public
// tracking page run.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByID loads one order with items and audit trail.
func (r *OrderRepository) GetByID(orderID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("TrackingUpdates").First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// GetByTrackingNumber serves the public, unauthenticated tracking lookup.
func (r *OrderRepository) GetByTrackingNumber(trackingNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Preload("TrackingUpdates").
		Where("tracking_number = ?", trackingNumber).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// ListByCustomer returns the customer's orders, newest first.
func (r *OrderRepository) ListByCustomer(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	return orders, nil
}

// ListByProvider resolves the provider's meal ids first, then every order with
// a line item referencing any of them. A mixed order legitimately shows up in
// each owning provider's list.
func (r *OrderRepository) ListByProvider(providerID uint) ([]models.Order, error) {
	var mealIDs []uint
	if err := r.db.Model(&models.Meal{}).Where("provider_id = ?", providerID).Pluck("id", &mealIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve provider meals: %w", err)
	}
	if len(mealIDs) == 0 {
		return []models.Order{}, nil
	}

	var orderIDs []uint
	if err := r.db.Model(&models.OrderItem{}).
		Where("meal_id IN ?", mealIDs).
		Distinct("order_id").
		Pluck("order_id", &orderIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve provider orders: %w", err)
	}
	if len(orderIDs) == 0 {
		return []models.Order{}, nil
	}

	var orders []models.Order
	err := r.db.Preload("Items").
		Where("id IN ?", orderIDs).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list provider orders: %w", err)
	}
	return orders, nil
}

// ListAll is the admin dashboard listing, newest first.
func (r *OrderRepository) ListAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Delete is the explicit administrative delete; nothing else removes orders.
func (r *OrderRepository) Delete(orderID uint) error {
	tx := r.db.Begin()
	if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if err := tx.Where("order_id = ?", orderID).Delete(&models.TrackingUpdate{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete tracking updates: %w", err)
	}
	if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return tx.Commit().Error
}
