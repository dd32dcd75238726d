package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// StockAlert represents a low stock alert
type StockAlert struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Remaining   int64  `json:"remaining"`
	Threshold   int64  `json:"threshold"`
	AlertType   string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockAlertNotifier is the interface for sending stock alerts.
// Implementations can support different channels (in-app, email, etc.)
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockBelowThresholdHandler reacts to stock dropping to or below a
// product's threshold by logging a warning and, when a notifier is
// configured, forwarding an alert.
type StockBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockBelowThresholdHandler creates a new handler for low stock events
func NewStockBelowThresholdHandler(logger *zap.Logger) *StockBelowThresholdHandler {
	return &StockBelowThresholdHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockBelowThresholdHandler) WithNotifier(notifier StockAlertNotifier) *StockBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *StockBelowThresholdHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *StockBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	thresholdEvent, ok := event.(*inventory.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockBelowThreshold, event.EventType())
	}

	h.logger.Warn("stock below threshold detected",
		zap.String("product_id", thresholdEvent.ProductID.String()),
		zap.String("product_name", thresholdEvent.ProductName),
		zap.Int64("remaining", thresholdEvent.Remaining),
		zap.Int64("threshold", thresholdEvent.Threshold),
	)

	if h.notifier == nil {
		return nil
	}

	alertType := "low_stock"
	if thresholdEvent.Remaining == 0 {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		ProductID:   thresholdEvent.ProductID.String(),
		ProductName: thresholdEvent.ProductName,
		Remaining:   thresholdEvent.Remaining,
		Threshold:   thresholdEvent.Threshold,
		AlertType:   alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert",
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
