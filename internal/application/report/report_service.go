package report

import (
	"context"

	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/report"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// ReportService derives sales figures from the order book. All
// computation lives in the domain layer as pure functions; this service
// only loads the relevant orders and shapes responses.
type ReportService struct {
	orderRepo order.Repository
}

// NewReportService creates a new ReportService
func NewReportService(orderRepo order.Repository) *ReportService {
	return &ReportService{orderRepo: orderRepo}
}

// SalesSummary aggregates revenue, completion rate, and average order
// value over orders matching the optional date range
func (s *ReportService) SalesSummary(ctx context.Context, filter DateRangeFilter) (*SalesSummaryResponse, error) {
	found, err := s.loadOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	response := ToSalesSummaryResponse(report.Aggregate(found))
	return &response, nil
}

// TopProducts ranks products by revenue over orders matching the
// optional date range. limit caps the result; limit <= 0 returns all.
func (s *ReportService) TopProducts(ctx context.Context, filter DateRangeFilter, limit int) ([]ProductRevenueResponse, error) {
	found, err := s.loadOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	ranked := report.TopProductsByRevenue(found, limit)
	responses := make([]ProductRevenueResponse, len(ranked))
	for i, entry := range ranked {
		responses[i] = ProductRevenueResponse{
			ProductID:   entry.ProductID,
			ProductName: entry.ProductName,
			Quantity:    entry.Quantity,
			Revenue:     entry.Revenue,
		}
	}
	return responses, nil
}

// loadOrders fetches every order in scope. Reports read the full order
// book, so pagination is disabled with a zero PageSize.
func (s *ReportService) loadOrders(ctx context.Context, filter DateRangeFilter) ([]order.Order, error) {
	domainFilter := shared.Filter{
		OrderBy:  "ordered_at",
		OrderDir: "asc",
		Filters:  make(map[string]interface{}),
	}
	if filter.Start != nil && filter.End != nil {
		return s.orderRepo.FindByDateRange(ctx, *filter.Start, *filter.End, domainFilter)
	}
	if filter.Start != nil {
		domainFilter.Filters["start_date"] = *filter.Start
	}
	if filter.End != nil {
		domainFilter.Filters["end_date"] = *filter.End
	}
	return s.orderRepo.FindAll(ctx, domainFilter)
}
