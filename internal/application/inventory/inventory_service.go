package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// InventoryService exposes stock operations that do not belong to an
// order flow: replenishment, stock lookups, the low-stock report, and
// the movement audit log.
type InventoryService struct {
	ledger          *inventory.StockLedger
	productRepo     catalog.ProductRepository
	transactionRepo inventory.StockTransactionRepository
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	ledger *inventory.StockLedger,
	productRepo catalog.ProductRepository,
	transactionRepo inventory.StockTransactionRepository,
) *InventoryService {
	return &InventoryService{
		ledger:          ledger,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
	}
}

// Restock replenishes a product's available quantity
func (s *InventoryService) Restock(ctx context.Context, productID uuid.UUID, req RestockRequest) (*StockLevelResponse, error) {
	level, err := s.ledger.Restock(ctx, productID, req.Quantity, inventory.ManualSource(req.Reference))
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// GetStockLevel reads a product's current stock position
func (s *InventoryService) GetStockLevel(ctx context.Context, productID uuid.UUID) (*StockLevelResponse, error) {
	level, err := s.ledger.Peek(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToStockLevelResponse(level)
	return &response, nil
}

// ListLowStock reports every product at or below its low-stock threshold
func (s *InventoryService) ListLowStock(ctx context.Context) ([]LowStockItemResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}

	items := inventory.LowStock(products)
	responses := make([]LowStockItemResponse, len(items))
	for i, item := range items {
		responses[i] = LowStockItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Remaining:   item.Remaining,
			Threshold:   item.Threshold,
			Shortfall:   item.Shortfall(),
		}
	}
	return responses, nil
}

// ListTransactions retrieves the stock movement log, newest first
func (s *InventoryService) ListTransactions(ctx context.Context, filter TransactionListFilter) ([]StockTransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}

	var (
		found []inventory.StockTransaction
		total int64
		err   error
	)
	if filter.ProductID != nil {
		found, err = s.transactionRepo.FindByProduct(ctx, *filter.ProductID, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		total, err = s.transactionRepo.CountByProduct(ctx, *filter.ProductID, domainFilter)
	} else {
		found, err = s.transactionRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		total, err = s.transactionRepo.Count(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockTransactionResponse, len(found))
	for i := range found {
		responses[i] = ToStockTransactionResponse(&found[i])
	}
	return responses, total, nil
}
