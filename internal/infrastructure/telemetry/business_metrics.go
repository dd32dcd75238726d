package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// BusinessMetrics tracks order activity and inventory health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderPlacedTotal    *Counter
	orderCancelledTotal *Counter
	orderAmountTotal    *Counter
	stockReservedTotal  *Counter

	// Gauge metrics (point-in-time values)
	lowStockRemaining *Gauge
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  meter,
		logger: logger,
	}

	var err error

	bm.orderPlacedTotal, err = NewCounter(
		meter,
		"omnitrack_order_placed_total",
		"Total number of orders placed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderCancelledTotal, err = NewCounter(
		meter,
		"omnitrack_order_cancelled_total",
		"Total number of orders cancelled",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		meter,
		"omnitrack_order_amount_total",
		"Total placed order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.stockReservedTotal, err = NewCounter(
		meter,
		"omnitrack_stock_reserved_total",
		"Total stock units reserved for orders",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	bm.lowStockRemaining, err = NewGauge(
		meter,
		"omnitrack_low_stock_remaining",
		"Remaining quantity of a product that crossed its low-stock threshold",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderPlaced records a placed order and its amount
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, amount decimal.Decimal) {
	bm.orderPlacedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, amount.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordOrderCancelled records a cancelled order, tagged by whether it was paid
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context, wasPaid bool) {
	bm.orderCancelledTotal.Inc(ctx, attribute.Bool("was_paid", wasPaid))
}

// RecordStockReserved records reserved units for a product
func (bm *BusinessMetrics) RecordStockReserved(ctx context.Context, quantity int64) {
	bm.stockReservedTotal.Add(ctx, quantity)
}

// RecordLowStock records the remaining quantity of a low-stock product
func (bm *BusinessMetrics) RecordLowStock(ctx context.Context, productID string, remaining int64) {
	bm.lowStockRemaining.Record(ctx, remaining, attribute.String("product_id", productID))
}

// EventHandler bridges domain events into business metrics. Register it
// on the event bus so metrics follow activity without the application
// services knowing about telemetry.
type EventHandler struct {
	metrics *BusinessMetrics
}

// NewEventHandler creates an event handler feeding the given metrics
func NewEventHandler(metrics *BusinessMetrics) *EventHandler {
	return &EventHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *EventHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderPlaced,
		order.EventTypeOrderCancelled,
		inventory.EventTypeStockReserved,
		inventory.EventTypeStockBelowThreshold,
	}
}

// Handle records the metric corresponding to the event
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		h.metrics.RecordOrderPlaced(ctx, e.TotalAmount)
	case *order.OrderCancelledEvent:
		h.metrics.RecordOrderCancelled(ctx, e.WasPaid)
	case *inventory.StockReservedEvent:
		h.metrics.RecordStockReserved(ctx, e.Quantity)
	case *inventory.StockBelowThresholdEvent:
		h.metrics.RecordLowStock(ctx, e.ProductID.String(), e.Remaining)
	}
	return nil
}

// Ensure EventHandler implements shared.EventHandler
var _ shared.EventHandler = (*EventHandler)(nil)
