package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/catalog"
)

// LowStockItem describes a product at or below its low-stock threshold
type LowStockItem struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Remaining   int64
	Threshold   int64
}

// Shortfall returns how far below the threshold the product sits
func (i LowStockItem) Shortfall() int64 {
	return i.Threshold - i.Remaining
}

// LowStock derives the set of products whose available quantity is at or
// below their threshold. It is a pure function over the given snapshot:
// it never mutates the products and reads no other state. Results are
// ordered by remaining quantity ascending, then by name for stability.
func LowStock(products []catalog.Product) []LowStockItem {
	items := make([]LowStockItem, 0)
	for i := range products {
		p := &products[i]
		if !p.IsLowStock() {
			continue
		}
		items = append(items, LowStockItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			Remaining:   p.AvailableQuantity,
			Threshold:   p.LowStockThreshold,
		})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].Remaining != items[b].Remaining {
			return items[a].Remaining < items[b].Remaining
		}
		return items[a].ProductName < items[b].ProductName
	})
	return items
}
