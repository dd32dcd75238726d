package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// StockTransactionRepository persists the append-only stock movement log
type StockTransactionRepository interface {
	// Append stores a new transaction record
	Append(ctx context.Context, tx *StockTransaction) error

	// FindByID retrieves a transaction by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)

	// FindByProduct retrieves transactions for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)

	// FindBySource retrieves all transactions linked to a source document
	FindBySource(ctx context.Context, source Source) ([]StockTransaction, error)

	// FindAll retrieves transactions matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]StockTransaction, error)

	// Count counts transactions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByProduct counts transactions for a product
	CountByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (int64, error)
}
