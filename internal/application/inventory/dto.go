package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/omnitrack/backend/internal/domain/inventory"
)

// RestockRequest represents a request to replenish a product's stock
type RestockRequest struct {
	Quantity    int64      `json:"quantity" binding:"required,min=1"`
	Reference   string     `json:"reference" binding:"max=64"`
	OperatorRef *uuid.UUID `json:"operator_ref"`
}

// StockLevelResponse represents a product's stock position
type StockLevelResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	SKU               string    `json:"sku"`
	AvailableQuantity int64     `json:"available_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	IsLow             bool      `json:"is_low"`
}

// LowStockItemResponse represents a product at or below its threshold
type LowStockItemResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Remaining   int64     `json:"remaining"`
	Threshold   int64     `json:"threshold"`
	Shortfall   int64     `json:"shortfall"`
}

// StockTransactionResponse represents a stock movement record
type StockTransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Type          string     `json:"type"`
	Quantity      int64      `json:"quantity"`
	QuantityAfter int64      `json:"quantity_after"`
	SourceType    string     `json:"source_type"`
	SourceID      string     `json:"source_id"`
	OperatorRef   *uuid.UUID `json:"operator_ref,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TransactionListFilter represents filter options for the movement log
type TransactionListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	Type      *string    `form:"type"`
	Page      int        `form:"page" binding:"min=1"`
	PageSize  int        `form:"page_size" binding:"min=1,max=100"`
}

// ToStockLevelResponse converts a ledger snapshot to its response form
func ToStockLevelResponse(level *inventory.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:         level.ProductID,
		ProductName:       level.ProductName,
		SKU:               level.SKU,
		AvailableQuantity: level.AvailableQuantity,
		LowStockThreshold: level.LowStockThreshold,
		IsLow:             level.IsLow,
	}
}

// ToStockTransactionResponse converts a stock transaction to its response form
func ToStockTransactionResponse(tx *inventory.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:            tx.ID,
		ProductID:     tx.ProductID,
		Type:          tx.Type.String(),
		Quantity:      tx.Quantity,
		QuantityAfter: tx.QuantityAfter,
		SourceType:    string(tx.SourceType),
		SourceID:      tx.SourceID,
		OperatorRef:   tx.OperatorRef,
		CreatedAt:     tx.CreatedAt,
	}
}
