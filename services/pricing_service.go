package services

import (
	"math"

	"github.com/nahidhasan/mealbox-app/models"
)

const (
	// TaxRate is applied to the subtotal.
	TaxRate = 0.05
	// ShippingCharge is a flat fee per order.
	ShippingCharge = 100.0
)

// PricingBreakdown is the derived amounts for a set of line items. It is never
// stored on the cart; it is recomputed on every read.
type PricingBreakdown struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// CalculatePricing derives subtotal, tax, shipping and total for cart items.
// Pure and deterministic: same items in, same amounts out.
func CalculatePricing(items []models.CartItem) PricingBreakdown {
	var subtotal float64
	for _, item := range items {
		subtotal += item.EffectiveUnitPrice() * float64(item.Quantity)
	}
	return breakdownFor(subtotal)
}

// CalculateOrderPricing is CalculatePricing over already-snapshotted order items.
func CalculateOrderPricing(items []models.OrderItem) PricingBreakdown {
	var subtotal float64
	for _, item := range items {
		subtotal += item.EffectiveUnitPrice() * float64(item.Quantity)
	}
	return breakdownFor(subtotal)
}

func breakdownFor(subtotal float64) PricingBreakdown {
	tax := subtotal * TaxRate
	return PricingBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: ShippingCharge,
		Total:    math.Round(subtotal + tax + ShippingCharge),
	}
}
