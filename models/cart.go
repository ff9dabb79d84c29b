package models

import "time"

// AddOn is an extra priced addition to a line item (e.g. "Extra Cheese").
type AddOn struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Customization is a value object on a line item, stored as JSON on the row.
type Customization struct {
	SpiceLevel          string   `json:"spice_level,omitempty"` // mild | medium | hot
	RemovedIngredients  []string `json:"removed_ingredients,omitempty"`
	AddOns              []AddOn  `json:"add_ons,omitempty"`
	SpecialInstructions string   `json:"special_instructions,omitempty"`
}

// AddOnTotal sums the add-on prices for one unit.
func (c Customization) AddOnTotal() float64 {
	var total float64
	for _, a := range c.AddOns {
		total += a.Price
	}
	return total
}

// Cart holds the pending items of exactly one customer. It carries no stored
// total; amounts are always derived by the pricing engine at read time.
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"not null;uniqueIndex" json:"customer_id"`
	Customer   User       `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	CartID        uint          `gorm:"not null;index" json:"cart_id"`
	MealID        uint          `gorm:"not null" json:"meal_id"`
	MealName      string        `gorm:"type:varchar(255); not null" json:"meal_name"`
	ProviderID    uint          `gorm:"not null" json:"provider_id"`
	ProviderName  string        `gorm:"type:varchar(255)" json:"provider_name"`
	UnitPrice     float64       `gorm:"type:decimal(10,2); not null" json:"unit_price"`
	Quantity      int           `gorm:"not null" json:"quantity"`
	Customization Customization `gorm:"serializer:json" json:"customization"`
	DeliveryDate  string        `gorm:"type:varchar(20)" json:"delivery_date"`
	DeliverySlot  string        `gorm:"type:varchar(50)" json:"delivery_slot"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EffectiveUnitPrice is the unit price including add-ons.
func (ci CartItem) EffectiveUnitPrice() float64 {
	return ci.UnitPrice + ci.Customization.AddOnTotal()
}
