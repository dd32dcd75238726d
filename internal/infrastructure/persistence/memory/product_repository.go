// Package memory provides in-memory repository implementations backed by
// maps and RWMutex. They honor the same optimistic locking contract as
// the GORM repositories and are used for tests and embedded deployments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// ProductRepository is an in-memory implementation of catalog.ProductRepository
type ProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]catalog.Product
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[uuid.UUID]catalog.Product),
	}
}

// FindByID finds a product by its ID
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := p
	return &copied, nil
}

// FindByIDs finds multiple products by their IDs
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

// FindBySKU finds a product by its SKU
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sku = strings.ToUpper(sku)
	for _, p := range r.products {
		if p.SKU == sku {
			copied := p
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAll finds all products matching the filter
func (r *ProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesProductFilter(&p, filter) {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].Name < found[b].Name })
	return paginate(found, filter), nil
}

// FindLowStock finds products at or below their low-stock threshold
func (r *ProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]catalog.Product, 0)
	for _, p := range r.products {
		if p.AvailableQuantity <= p.LowStockThreshold {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(a, b int) bool {
		if found[a].AvailableQuantity != found[b].AvailableQuantity {
			return found[a].AvailableQuantity < found[b].AvailableQuantity
		}
		return found[a].Name < found[b].Name
	})
	return found, nil
}

// Save creates or updates a product
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = *product
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != product.Version-1 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Product was modified by another transaction")
	}
	r.products[product.ID] = *product
	return nil
}

// Count counts products matching the filter
func (r *ProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, p := range r.products {
		if matchesProductFilter(&p, filter) {
			count++
		}
	}
	return count, nil
}

// ExistsBySKU checks if a product with the SKU exists
func (r *ProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sku = strings.ToUpper(sku)
	for _, p := range r.products {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func matchesProductFilter(p *catalog.Product, filter shared.Filter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			return false
		}
	}
	if category, ok := filter.Filters["category"]; ok {
		if p.Category != category {
			return false
		}
	}
	return true
}

// paginate applies page/page-size slicing to an already sorted result
func paginate[T any](items []T, filter shared.Filter) []T {
	if filter.Page <= 0 || filter.PageSize <= 0 {
		return items
	}
	offset := (filter.Page - 1) * filter.PageSize
	if offset >= len(items) {
		return []T{}
	}
	end := offset + filter.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Ensure ProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*ProductRepository)(nil)
