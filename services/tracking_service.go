package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahidhasan/mealbox-app/models"
)

// TrackingService advances an order through its delivery stages and keeps the
// append-only audit trail.
type TrackingService struct {
	db *gorm.DB
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db}
}

// Advance moves the order to targetStage. Skipped stages are caught up
// implicitly because the order stores a single ordered stage: setting
// "processed" makes "placed" and "approved" reached as well. Moving backwards
// or re-applying the current stage fails with ErrInvalidTransition. Exactly
// one audit entry is appended per successful advance.
//
// Side effects on status: shipped sets the order to Shipped, delivered to
// Completed. Cancelling is allowed from placed/approved/processed only and
// clears the estimated delivery date.
func (s *TrackingService) Advance(orderID uint, targetStage models.TrackingStage, message string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return nil, ErrOrderNotFound
	}

	if targetStage == models.StageCancelled {
		return s.cancel(&order, message)
	}

	targetRank, ok := targetStage.Rank()
	if !ok {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidTransition, targetStage)
	}
	currentRank, ok := order.CurrentStage.Rank()
	if !ok {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidTransition)
	}
	if targetRank <= currentRank {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, order.CurrentStage, targetStage)
	}

	order.CurrentStage = targetStage
	switch targetStage {
	case models.StageShipped:
		order.Status = models.OrderStatusShipped
	case models.StageDelivered:
		order.Status = models.OrderStatusCompleted
	}
	order.UpdatedAt = time.Now()

	return s.saveWithUpdate(&order, targetStage, message)
}

func (s *TrackingService) cancel(order *models.Order, message string) (*models.Order, error) {
	switch order.CurrentStage {
	case models.StagePlaced, models.StageApproved, models.StageProcessed:
		// cancellable
	default:
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, order.CurrentStage)
	}

	order.CurrentStage = models.StageCancelled
	order.Status = models.OrderStatusCancelled
	order.EstimatedDeliveryDate = nil
	order.UpdatedAt = time.Now()

	return s.saveWithUpdate(order, models.StageCancelled, message)
}

func (s *TrackingService) saveWithUpdate(order *models.Order, stage models.TrackingStage, message string) (*models.Order, error) {
	tx := s.db.Begin()

	if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	update := models.TrackingUpdate{
		OrderID:   order.ID,
		Stage:     stage,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&update).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to append tracking update: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit tracking advance: %w", err)
	}

	order.TrackingUpdates = append(order.TrackingUpdates, update)
	return order, nil
}
