package report

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omnitrack/backend/internal/domain/order"
)

// SalesMetrics summarizes a set of orders. All figures are derived from
// the input alone; an empty input yields zero values rather than errors.
type SalesMetrics struct {
	TotalOrders       int64
	PlacedOrders      int64
	PaidOrders        int64
	DeliveredOrders   int64
	CancelledOrders   int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	CompletionRate    decimal.Decimal
}

// ProductRevenue ranks a product by the revenue it generated
type ProductRevenue struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// revenueCounts reports whether an order contributes to revenue. Only
// money actually collected counts: PAID and DELIVERED orders.
func revenueCounts(o *order.Order) bool {
	return o.Status == order.StatusPaid || o.Status == order.StatusDelivered
}

// Aggregate computes sales metrics over the given orders.
//
// TotalRevenue sums the totals of PAID and DELIVERED orders. The
// completion rate is DELIVERED over all non-cancelled orders, and the
// average order value is revenue over the number of revenue-bearing
// orders. Both ratios are zero when their denominator is zero.
func Aggregate(orders []order.Order) SalesMetrics {
	m := SalesMetrics{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		CompletionRate:    decimal.Zero,
	}

	var revenueOrders int64
	for i := range orders {
		o := &orders[i]
		m.TotalOrders++
		switch o.Status {
		case order.StatusPlaced:
			m.PlacedOrders++
		case order.StatusPaid:
			m.PaidOrders++
		case order.StatusDelivered:
			m.DeliveredOrders++
		case order.StatusCancelled:
			m.CancelledOrders++
		}
		if revenueCounts(o) {
			m.TotalRevenue = m.TotalRevenue.Add(o.TotalAmount)
			revenueOrders++
		}
	}

	if revenueOrders > 0 {
		m.AverageOrderValue = m.TotalRevenue.
			Div(decimal.NewFromInt(revenueOrders)).
			Round(2)
	}
	if active := m.TotalOrders - m.CancelledOrders; active > 0 {
		m.CompletionRate = decimal.NewFromInt(m.DeliveredOrders).
			Div(decimal.NewFromInt(active)).
			Round(4)
	}
	return m
}

// TopProductsByRevenue ranks products by the revenue their order lines
// generated across revenue-bearing orders. At most limit entries are
// returned; limit <= 0 means no cap. Ties break by product name.
func TopProductsByRevenue(orders []order.Order, limit int) []ProductRevenue {
	byProduct := make(map[uuid.UUID]*ProductRevenue)
	for i := range orders {
		o := &orders[i]
		if !revenueCounts(o) {
			continue
		}
		for _, item := range o.Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &ProductRevenue{
					ProductID:   item.ProductID,
					ProductName: item.ProductName,
					Revenue:     decimal.Zero,
				}
				byProduct[item.ProductID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.Amount)
		}
	}

	ranked := make([]ProductRevenue, 0, len(byProduct))
	for _, entry := range byProduct {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(a, b int) bool {
		if !ranked[a].Revenue.Equal(ranked[b].Revenue) {
			return ranked[a].Revenue.GreaterThan(ranked[b].Revenue)
		}
		return ranked[a].ProductName < ranked[b].ProductName
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
