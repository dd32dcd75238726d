package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnitrack/backend/internal/domain/report"
)

// SalesSummaryResponse represents aggregated sales figures
type SalesSummaryResponse struct {
	TotalOrders       int64           `json:"total_orders"`
	PlacedOrders      int64           `json:"placed_orders"`
	PaidOrders        int64           `json:"paid_orders"`
	DeliveredOrders   int64           `json:"delivered_orders"`
	CancelledOrders   int64           `json:"cancelled_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	CompletionRate    decimal.Decimal `json:"completion_rate"`
}

// ProductRevenueResponse represents one entry in the revenue ranking
type ProductRevenueResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DateRangeFilter restricts a report to orders placed within [Start, End)
type DateRangeFilter struct {
	Start *time.Time `form:"start"`
	End   *time.Time `form:"end"`
}

// ToSalesSummaryResponse converts sales metrics to their response form
func ToSalesSummaryResponse(m report.SalesMetrics) SalesSummaryResponse {
	return SalesSummaryResponse{
		TotalOrders:       m.TotalOrders,
		PlacedOrders:      m.PlacedOrders,
		PaidOrders:        m.PaidOrders,
		DeliveredOrders:   m.DeliveredOrders,
		CancelledOrders:   m.CancelledOrders,
		TotalRevenue:      m.TotalRevenue,
		AverageOrderValue: m.AverageOrderValue,
		CompletionRate:    m.CompletionRate,
	}
}
