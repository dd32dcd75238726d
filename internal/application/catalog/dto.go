package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnitrack/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Description       string          `json:"description" binding:"max=1000"`
	Category          string          `json:"category" binding:"required,min=1,max=100"`
	SKU               string          `json:"sku" binding:"required,min=1,max=50"`
	UnitPrice         decimal.Decimal `json:"unit_price" binding:"required"`
	InitialStock      int64           `json:"initial_stock" binding:"min=0"`
	LowStockThreshold int64           `json:"low_stock_threshold" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product's details
type UpdateProductRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category" binding:"omitempty,min=1,max=100"`
}

// UpdatePriceRequest represents a request to change a product's unit price
type UpdatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpdateThresholdRequest represents a request to change the low-stock threshold
type UpdateThresholdRequest struct {
	LowStockThreshold int64 `json:"low_stock_threshold" binding:"min=0"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string  `form:"search"`
	Category *string `form:"category"`
	Page     int     `form:"page" binding:"min=1"`
	PageSize int     `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	SKU               string          `json:"sku"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	AvailableQuantity int64           `json:"available_quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	IsLowStock        bool            `json:"is_low_stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product to its response representation
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		SKU:               p.SKU,
		UnitPrice:         p.UnitPrice,
		AvailableQuantity: p.AvailableQuantity,
		LowStockThreshold: p.LowStockThreshold,
		IsLowStock:        p.IsLowStock(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
