package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// GormStockTransactionRepository implements StockTransactionRepository using GORM
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append stores a new transaction record. The log is append-only;
// existing rows are never updated.
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *inventory.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByID retrieves a transaction by its ID
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	var tx inventory.StockTransaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByProduct retrieves transactions for a product, newest first
func (r *GormStockTransactionRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]inventory.StockTransaction, error) {
	var found []inventory.StockTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// FindBySource retrieves all transactions linked to a source document
func (r *GormStockTransactionRepository) FindBySource(ctx context.Context, source inventory.Source) ([]inventory.StockTransaction, error) {
	var found []inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", source.Type, source.ID).
		Order("created_at ASC").
		Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// FindAll retrieves transactions matching the filter, newest first
func (r *GormStockTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockTransaction, error) {
	var found []inventory.StockTransaction
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.StockTransaction{}), filter)

	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// Count counts transactions matching the filter
func (r *GormStockTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&inventory.StockTransaction{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByProduct counts transactions for a product
func (r *GormStockTransactionRepository) CountByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// stockTransactionSortFields contains allowed sort fields for the log
var stockTransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"type":       true,
	"quantity":   true,
}

// applyFilter applies filter options to the query
func (r *GormStockTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, stockTransactionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "source_type":
			query = query.Where("source_type = ?", value)
		case "operator_ref":
			query = query.Where("operator_ref = ?", value)
		}
	}

	return query
}

// Ensure GormStockTransactionRepository implements StockTransactionRepository
var _ inventory.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
