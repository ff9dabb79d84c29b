package models

import "time"

// Order statuses
const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusShipped   = "Shipped"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// TrackingStage is an ordered delivery stage. The order keeps a single current
// stage; per-stage flags are derived, never stored.
type TrackingStage string

const (
	StagePlaced    TrackingStage = "placed"
	StageApproved  TrackingStage = "approved"
	StageProcessed TrackingStage = "processed"
	StageShipped   TrackingStage = "shipped"
	StageDelivered TrackingStage = "delivered"
	// StageCancelled is out-of-band, reachable from placed/approved/processed only.
	StageCancelled TrackingStage = "cancelled"
)

var stageRanks = map[TrackingStage]int{
	StagePlaced:    0,
	StageApproved:  1,
	StageProcessed: 2,
	StageShipped:   3,
	StageDelivered: 4,
}

// Rank returns the ordinal of a delivery stage. Cancelled has no rank.
func (s TrackingStage) Rank() (int, bool) {
	r, ok := stageRanks[s]
	return r, ok
}

// Transaction mirrors the shurjoPay wire fields exactly; these JSON names are
// the contract with the processor and must not be renamed.
type Transaction struct {
	ID                string `gorm:"type:varchar(64);index" json:"id"`
	TransactionStatus string `gorm:"type:varchar(32)" json:"transactionStatus"`
	BankStatus        string `gorm:"type:varchar(32)" json:"bank_status"`
	SPCode            string `gorm:"type:varchar(16)" json:"sp_code"`
	SPMessage         string `gorm:"type:varchar(255)" json:"sp_message"`
	Method            string `gorm:"type:varchar(64)" json:"method"`
	DateTime          string `gorm:"type:varchar(32)" json:"date_time"`
}

// Order is an immutable snapshot of cart items at creation time. Catalog price
// changes after creation never affect an existing order.
type Order struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CustomerID     uint          `gorm:"not null;index" json:"customer_id"`
	Customer       User          `gorm:"foreignKey:CustomerID;references:ID" json:"-"`
	TrackingNumber string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"tracking_number"`
	Status         string        `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CurrentStage   TrackingStage `gorm:"type:varchar(20);not null;default:'placed'" json:"current_stage"`

	Subtotal float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax      float64 `gorm:"type:decimal(10,2);not null" json:"tax"`
	Shipping float64 `gorm:"type:decimal(10,2);not null" json:"shipping"`
	Total    float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	// Delivery details captured at checkout.
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);not null" json:"email"`
	Phone        string `gorm:"type:varchar(20);not null" json:"phone"`
	Address      string `gorm:"type:varchar(255);not null" json:"address"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	ZipCode      string `gorm:"type:varchar(20)" json:"zip_code"`
	DeliveryDate string `gorm:"type:varchar(20)" json:"delivery_date"`
	DeliverySlot string `gorm:"type:varchar(50)" json:"delivery_slot"`

	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`

	Transaction Transaction `gorm:"embedded;embeddedPrefix:transaction_" json:"transaction"`

	Items           []OrderItem      `gorm:"foreignKey:OrderID" json:"items"`
	TrackingUpdates []TrackingUpdate `gorm:"foreignKey:OrderID" json:"tracking_updates"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// StageReached reports whether the order has passed the given stage. Stages are
// monotonic: reaching stage N implies every stage before N.
func (o *Order) StageReached(stage TrackingStage) bool {
	want, ok := stage.Rank()
	if !ok {
		return stage == StageCancelled && o.CurrentStage == StageCancelled
	}
	cur, ok := o.CurrentStage.Rank()
	if !ok {
		return false
	}
	return cur >= want
}

// TrackingFlags is the derived per-stage view used in API payloads.
type TrackingFlags struct {
	Placed    bool `json:"placed"`
	Approved  bool `json:"approved"`
	Processed bool `json:"processed"`
	Shipped   bool `json:"shipped"`
	Delivered bool `json:"delivered"`
}

func (o *Order) TrackingFlags() TrackingFlags {
	return TrackingFlags{
		Placed:    o.StageReached(StagePlaced),
		Approved:  o.StageReached(StageApproved),
		Processed: o.StageReached(StageProcessed),
		Shipped:   o.StageReached(StageShipped),
		Delivered: o.StageReached(StageDelivered),
	}
}

// OrderItem is a priced line snapshot; it never references live catalog rows
// for amounts.
type OrderItem struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderID       uint          `gorm:"not null;index" json:"order_id"`
	Order         Order         `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MealID        uint          `gorm:"not null;index" json:"meal_id"`
	MealName      string        `gorm:"type:varchar(255);not null" json:"meal_name"`
	ProviderID    uint          `gorm:"not null;index" json:"provider_id"`
	ProviderName  string        `gorm:"type:varchar(255)" json:"provider_name"`
	UnitPrice     float64       `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity      int           `gorm:"not null" json:"quantity"`
	Customization Customization `gorm:"serializer:json" json:"customization"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EffectiveUnitPrice is the unit price including add-ons.
func (oi OrderItem) EffectiveUnitPrice() float64 {
	return oi.UnitPrice + oi.Customization.AddOnTotal()
}

// TrackingUpdate is one append-only audit entry; prior entries are never
// mutated or removed.
type TrackingUpdate struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	OrderID   uint          `gorm:"not null;index" json:"order_id"`
	Stage     TrackingStage `gorm:"type:varchar(20);not null" json:"stage"`
	Message   string        `gorm:"type:varchar(255)" json:"message"`
	CreatedAt time.Time     `gorm:"not null" json:"timestamp"`
}
