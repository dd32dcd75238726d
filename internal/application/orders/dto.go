package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnitrack/backend/internal/domain/order"
)

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	UserRef      uuid.UUID           `json:"user_ref"`
	Status       string              `json:"status"`
	Items        []OrderItemResponse `json:"items"`
	ItemCount    int                 `json:"item_count"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	OrderedAt    time.Time           `json:"ordered_at"`
	PaidAt       *time.Time          `json:"paid_at,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	UserRef   *uuid.UUID    `form:"user_ref"`
	Status    *order.Status `form:"status"`
	StartDate *time.Time    `form:"start_date"`
	EndDate   *time.Time    `form:"end_date"`
	Page      int           `form:"page" binding:"min=1"`
	PageSize  int           `form:"page_size" binding:"min=1,max=100"`
	OrderBy   string        `form:"order_by"`
	OrderDir  string        `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOrderResponse converts an order to its response representation
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		}
	}
	return OrderResponse{
		ID:           o.ID,
		UserRef:      o.UserRef,
		Status:       o.Status.String(),
		Items:        items,
		ItemCount:    o.ItemCount(),
		TotalAmount:  o.TotalAmount,
		OrderedAt:    o.OrderedAt,
		PaidAt:       o.PaidAt,
		DeliveredAt:  o.DeliveredAt,
		CancelledAt:  o.CancelledAt,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
