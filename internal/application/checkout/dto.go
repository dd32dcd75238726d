package checkout

import (
	"github.com/google/uuid"
)

// CartLine is a single product/quantity pair in a checkout request
type CartLine struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

// CheckoutRequest represents a request to place an order
type CheckoutRequest struct {
	UserRef uuid.UUID  `json:"user_ref" binding:"required"`
	Lines   []CartLine `json:"lines" binding:"required,min=1"`
}
