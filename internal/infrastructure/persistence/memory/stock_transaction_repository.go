package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// StockTransactionRepository is an in-memory implementation of the
// append-only stock movement log
type StockTransactionRepository struct {
	mu           sync.RWMutex
	transactions []inventory.StockTransaction
}

// NewStockTransactionRepository creates a new in-memory transaction log
func NewStockTransactionRepository() *StockTransactionRepository {
	return &StockTransactionRepository{
		transactions: make([]inventory.StockTransaction, 0),
	}
}

// Append stores a new transaction record
func (r *StockTransactionRepository) Append(ctx context.Context, tx *inventory.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions = append(r.transactions, *tx)
	return nil
}

// FindByID retrieves a transaction by its ID
func (r *StockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions {
		if tx.ID == id {
			copied := tx
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindByProduct retrieves transactions for a product, newest first
func (r *StockTransactionRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockTransaction, error) {
	return r.findWhere(filter, func(tx *inventory.StockTransaction) bool {
		return tx.ProductID == productID
	})
}

// FindBySource retrieves all transactions linked to a source document
func (r *StockTransactionRepository) FindBySource(ctx context.Context, source inventory.Source) ([]inventory.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]inventory.StockTransaction, 0)
	for _, tx := range r.transactions {
		if tx.SourceType == source.Type && tx.SourceID == source.ID {
			found = append(found, tx)
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].CreatedAt.Before(found[b].CreatedAt) })
	return found, nil
}

// FindAll retrieves transactions matching the filter, newest first
func (r *StockTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockTransaction, error) {
	return r.findWhere(filter, func(tx *inventory.StockTransaction) bool { return true })
}

// Count counts transactions matching the filter
func (r *StockTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for i := range r.transactions {
		if matchesTransactionFilter(&r.transactions[i], filter) {
			count++
		}
	}
	return count, nil
}

// CountByProduct counts transactions for a product
func (r *StockTransactionRepository) CountByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for i := range r.transactions {
		tx := &r.transactions[i]
		if tx.ProductID == productID && matchesTransactionFilter(tx, filter) {
			count++
		}
	}
	return count, nil
}

func (r *StockTransactionRepository) findWhere(filter shared.Filter, match func(*inventory.StockTransaction) bool) ([]inventory.StockTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]inventory.StockTransaction, 0)
	for i := range r.transactions {
		tx := &r.transactions[i]
		if match(tx) && matchesTransactionFilter(tx, filter) {
			found = append(found, *tx)
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].CreatedAt.After(found[b].CreatedAt) })
	return paginate(found, filter), nil
}

func matchesTransactionFilter(tx *inventory.StockTransaction, filter shared.Filter) bool {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			if tx.Type.String() != value {
				return false
			}
		case "source_type":
			if string(tx.SourceType) != value {
				return false
			}
		}
	}
	return true
}

// Ensure StockTransactionRepository implements the domain interface
var _ inventory.StockTransactionRepository = (*StockTransactionRepository)(nil)
