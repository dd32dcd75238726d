package catalog

import (
	"strings"
	"time"

	"github.com/omnitrack/backend/internal/domain/shared"
	"github.com/omnitrack/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product in the catalog.
// It is the aggregate root for product-related operations.
//
// AvailableQuantity is owned by the stock ledger: nothing outside
// internal/domain/inventory may mutate it. Catalog management owns the
// remaining fields (name, category, price, threshold).
type Product struct {
	shared.BaseAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Category          string          `gorm:"type:varchar(100);index"`
	SKU               string          `gorm:"type:varchar(50);uniqueIndex"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQuantity int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(name, category, sku string, unitPrice valueobject.Money, initialStock, lowStockThreshold int64) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if initialStock < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial stock cannot be negative")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Category:          category,
		SKU:               strings.ToUpper(sku),
		UnitPrice:         unitPrice.Amount(),
		AvailableQuantity: initialStock,
		LowStockThreshold: lowStockThreshold,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// UpdatePrice changes the selling price. Existing orders are unaffected:
// order items carry a price snapshot taken at checkout.
func (p *Product) UpdatePrice(unitPrice valueobject.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.UnitPrice = unitPrice.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetLowStockThreshold updates the low-stock alert threshold
func (p *Product) SetLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}

	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// DecrementStock reduces the available quantity. The quantity never goes
// negative: a decrement beyond availability fails with INSUFFICIENT_STOCK
// and leaves the product unchanged.
func (p *Product) DecrementStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > p.AvailableQuantity {
		return shared.ErrInsufficientStock
	}

	p.AvailableQuantity -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// IncrementStock raises the available quantity. No upper bound is enforced.
func (p *Product) IncrementStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	p.AvailableQuantity += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (p *Product) CanFulfill(quantity int64) bool {
	return quantity > 0 && p.AvailableQuantity >= quantity
}

// IsLowStock returns true if available quantity is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.AvailableQuantity <= p.LowStockThreshold
}

// HasAvailableStock returns true if there is any available stock
func (p *Product) HasAvailableStock() bool {
	return p.AvailableQuantity > 0
}

// GetUnitPriceMoney returns the unit price as Money value object
func (p *Product) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.UnitPrice)
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
