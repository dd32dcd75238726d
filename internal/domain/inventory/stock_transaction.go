package inventory

import (
	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// TransactionType classifies a stock movement
type TransactionType string

const (
	TransactionTypeSale    TransactionType = "SALE"    // reservation for a placed order
	TransactionTypeRelease TransactionType = "RELEASE" // reservation returned on cancellation
	TransactionTypeRestock TransactionType = "RESTOCK" // catalog-management replenishment
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeRelease, TransactionTypeRestock:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// SourceType identifies the kind of document that caused a stock movement
type SourceType string

const (
	SourceTypeOrder  SourceType = "ORDER"
	SourceTypeManual SourceType = "MANUAL"
)

// Source identifies the document a stock movement belongs to
type Source struct {
	Type SourceType
	ID   string
}

// OrderSource builds a Source for an order document
func OrderSource(orderID uuid.UUID) Source {
	return Source{Type: SourceTypeOrder, ID: orderID.String()}
}

// ManualSource builds a Source for a manual adjustment
func ManualSource(reference string) Source {
	return Source{Type: SourceTypeManual, ID: reference}
}

// StockTransaction is an append-only audit record of a single stock
// movement. Quantity is the signed delta applied to the product's
// available quantity; QuantityAfter is the quantity observed immediately
// after the movement.
type StockTransaction struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type          TransactionType `gorm:"type:varchar(20);not null;index"`
	Quantity      int64           `gorm:"not null"`
	QuantityAfter int64           `gorm:"not null"`
	SourceType    SourceType      `gorm:"type:varchar(20);not null;index:idx_stock_tx_source"`
	SourceID      string          `gorm:"type:varchar(64);index:idx_stock_tx_source"`
	OperatorRef   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a new stock transaction record
func NewStockTransaction(productID uuid.UUID, txType TransactionType, quantity, quantityAfter int64, source Source) (*StockTransaction, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown transaction type")
	}
	if quantity == 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transaction quantity cannot be zero")
	}
	if quantityAfter < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity after transaction cannot be negative")
	}

	return &StockTransaction{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		Type:          txType,
		Quantity:      quantity,
		QuantityAfter: quantityAfter,
		SourceType:    source.Type,
		SourceID:      source.ID,
	}, nil
}

// WithOperator attributes the transaction to an operator
func (t *StockTransaction) WithOperator(operatorRef uuid.UUID) *StockTransaction {
	t.OperatorRef = &operatorRef
	return t
}
