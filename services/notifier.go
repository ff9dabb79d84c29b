package services

import (
	"log"

	"github.com/nahidhasan/mealbox-app/models"
)

// Notifier is the fire-and-forget order mail hook. Template rendering and
// delivery live outside this system; failures are logged and never block the
// order pipeline.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// OrderPlaced announces a freshly placed order to the customer.
func (n *Notifier) OrderPlaced(order *models.Order) {
	n.notify("order placed", order.Email, order.TrackingNumber)
}

// PaymentConfirmed announces a successful payment.
func (n *Notifier) PaymentConfirmed(order *models.Order) {
	n.notify("payment confirmed", order.Email, order.TrackingNumber)
}

func (n *Notifier) notify(event, email, trackingNumber string) {
	go func() {
		log.Printf("notify %s: %s (order %s)", event, email, trackingNumber)
	}()
}
