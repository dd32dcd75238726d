package inventory

import (
	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// Event types for the inventory bounded context
const (
	EventTypeStockReserved       = "inventory.stock.reserved"
	EventTypeStockReleased       = "inventory.stock.released"
	EventTypeStockRestocked      = "inventory.stock.restocked"
	EventTypeStockBelowThreshold = "inventory.stock.below_threshold"
)

// AggregateTypeProduct names the aggregate stock events attach to
const AggregateTypeProduct = "Product"

// StockReservedEvent is emitted when stock is reserved for an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
	Source    Source    `json:"source"`
}

// NewStockReservedEvent creates a new stock reserved event
func NewStockReservedEvent(productID uuid.UUID, quantity, remaining int64, source Source) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeProduct, productID),
		ProductID:       productID,
		Quantity:        quantity,
		Remaining:       remaining,
		Source:          source,
	}
}

// StockReleasedEvent is emitted when a reservation is returned to stock
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
	Source    Source    `json:"source"`
}

// NewStockReleasedEvent creates a new stock released event
func NewStockReleasedEvent(productID uuid.UUID, quantity, remaining int64, source Source) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeProduct, productID),
		ProductID:       productID,
		Quantity:        quantity,
		Remaining:       remaining,
		Source:          source,
	}
}

// StockRestockedEvent is emitted when stock is replenished
type StockRestockedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
}

// NewStockRestockedEvent creates a new stock restocked event
func NewStockRestockedEvent(productID uuid.UUID, quantity, remaining int64) *StockRestockedEvent {
	return &StockRestockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestocked, AggregateTypeProduct, productID),
		ProductID:       productID,
		Quantity:        quantity,
		Remaining:       remaining,
	}
}

// StockBelowThresholdEvent is emitted when a movement leaves a product
// at or below its low-stock threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Remaining   int64     `json:"remaining"`
	Threshold   int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new low stock warning event
func NewStockBelowThresholdEvent(productID uuid.UUID, productName string, remaining, threshold int64) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeProduct, productID),
		ProductID:       productID,
		ProductName:     productName,
		Remaining:       remaining,
		Threshold:       threshold,
	}
}
