package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nahidhasan/mealbox-app/models"
)

// CartService owns per-customer carts. It performs no identity checks; the
// caller supplies an authenticated customer id.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// AddItemInput carries what the client controls on an add. The unit price is
// always resolved from the meal catalog, never taken from the client.
type AddItemInput struct {
	MealID        uint
	Quantity      int
	DeliveryDate  string
	DeliverySlot  string
	Customization models.Customization
}

// AddItem adds a meal to the customer's cart, creating the cart lazily. When
// the meal is already in the cart the quantities are summed into the one
// existing line; the existing customization wins and the incoming one is
// discarded. Distinct customizations therefore never split into separate lines.
func (s *CartService) AddItem(customerID uint, input AddItemInput) (*models.Cart, error) {
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var meal models.Meal
	if err := s.db.Preload("Provider").First(&meal, input.MealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealNotFound
		}
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}
	if !meal.Available {
		return nil, ErrMealUnavailable
	}

	cart, err := s.loadOrCreateCart(customerID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].MealID == input.MealID {
			cart.Items[i].Quantity += input.Quantity
			cart.Items[i].UpdatedAt = time.Now()
			if err := s.db.Save(&cart.Items[i]).Error; err != nil {
				return nil, fmt.Errorf("failed to update cart item: %w", err)
			}
			merged = true
			break
		}
	}

	if !merged {
		item := models.CartItem{
			CartID:        cart.ID,
			MealID:        meal.ID,
			MealName:      meal.Name,
			ProviderID:    meal.ProviderID,
			ProviderName:  meal.Provider.Name,
			UnitPrice:     meal.Price,
			Quantity:      input.Quantity,
			Customization: input.Customization,
			DeliveryDate:  input.DeliveryDate,
			DeliverySlot:  input.DeliverySlot,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	return s.reload(cart.ID)
}

// UpdateItemInput carries the optional changes to one cart line. Nil fields are
// left as they are.
type UpdateItemInput struct {
	Quantity      *int
	Customization *models.Customization
}

// UpdateItem changes the quantity and/or customization of one cart line, keyed
// by meal id. An update of neither is rejected by the caller before it gets
// here; a present customization replaces the stored one wholesale.
func (s *CartService) UpdateItem(customerID, mealID uint, input UpdateItemInput) (*models.Cart, error) {
	if input.Quantity != nil && *input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.findCart(customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrItemNotFound
	}

	var item models.CartItem
	if err := s.db.Where("cart_id = ? AND meal_id = ?", cart.ID, mealID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}

	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Customization != nil {
		item.Customization = *input.Customization
	}
	item.UpdatedAt = time.Now()
	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.reload(cart.ID)
}

// RemoveItem deletes one cart line. When the last line goes, the cart record
// itself is deleted rather than left as an empty shell; callers must treat a
// missing cart as an empty one.
func (s *CartService) RemoveItem(customerID, mealID uint) (*models.Cart, error) {
	cart, err := s.findCart(customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrItemNotFound
	}

	res := s.db.Where("cart_id = ? AND meal_id = ?", cart.ID, mealID).Delete(&models.CartItem{})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrItemNotFound
	}

	var remaining int64
	if err := s.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining).Error; err != nil {
		return nil, fmt.Errorf("failed to count cart items: %w", err)
	}
	if remaining == 0 {
		if err := s.db.Delete(&models.Cart{}, cart.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to delete empty cart: %w", err)
		}
		return &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}, nil
	}

	return s.reload(cart.ID)
}

// Clear deletes the customer's cart and its items. Idempotent: clearing a
// missing cart is not an error.
func (s *CartService) Clear(customerID uint) error {
	cart, err := s.findCart(customerID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if err := s.db.Delete(&models.Cart{}, cart.ID).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// GetCart returns the customer's cart with its derived pricing. A missing cart
// is returned as an empty cart.
func (s *CartService) GetCart(customerID uint) (*models.Cart, PricingBreakdown, error) {
	cart, err := s.findCart(customerID)
	if err != nil {
		return nil, PricingBreakdown{}, err
	}
	if cart == nil {
		empty := &models.Cart{CustomerID: customerID, Items: []models.CartItem{}}
		return empty, CalculatePricing(nil), nil
	}
	return cart, CalculatePricing(cart.Items), nil
}

func (s *CartService) findCart(customerID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Where("customer_id = ?", customerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) loadOrCreateCart(customerID uint) (*models.Cart, error) {
	cart, err := s.findCart(customerID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	created := models.Cart{
		CustomerID: customerID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &created, nil
}

func (s *CartService) reload(cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.Preload("Items").First(&cart, cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	return &cart, nil
}
