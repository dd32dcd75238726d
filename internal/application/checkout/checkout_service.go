package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/application/orders"
	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// CheckoutService turns a validated cart into a PLACED order. The whole
// operation is all-or-nothing: stock for every line is reserved through
// the ledger in one batch before the order exists, and a failure to
// persist the order returns the reservation.
type CheckoutService struct {
	productRepo    catalog.ProductRepository
	orderRepo      order.Repository
	ledger         *inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	maxCartLines   int
}

// DefaultMaxCartLines caps distinct products per checkout unless configured
const DefaultMaxCartLines = 100

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	productRepo catalog.ProductRepository,
	orderRepo order.Repository,
	ledger *inventory.StockLedger,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		ledger:       ledger,
		logger:       logger,
		maxCartLines: DefaultMaxCartLines,
	}
}

// WithMaxCartLines overrides the distinct-product cap per checkout
func (s *CheckoutService) WithMaxCartLines(limit int) *CheckoutService {
	if limit > 0 {
		s.maxCartLines = limit
	}
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder validates the cart, reserves stock for every line in one
// atomic batch, and creates the order in PLACED status. Unit prices and
// product names are snapshotted onto the order lines at this moment, so
// later catalog changes never alter an existing order's total.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*orders.OrderResponse, error) {
	merged, err := validateCart(req)
	if err != nil {
		return nil, err
	}
	if len(merged) > s.maxCartLines {
		return nil, shared.NewDomainError(shared.ErrInvalidCart.Code,
			fmt.Sprintf("Cart cannot contain more than %d distinct products", s.maxCartLines))
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	// Preserve the request's line order in the created order.
	items := make([]order.Item, 0, len(merged))
	lines := make([]inventory.ReservationLine, 0, len(merged))
	seen := make(map[uuid.UUID]bool, len(merged))
	for _, line := range req.Lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		// An unknown product makes the whole cart invalid rather than
		// surfacing as a missing resource.
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError(shared.ErrInvalidCart.Code,
				"Cart references unknown product: "+line.ProductID.String())
		}
		quantity := merged[line.ProductID]
		item, err := order.NewItem(product.ID, product.Name, quantity, product.GetUnitPriceMoney())
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		lines = append(lines, inventory.ReservationLine{ProductID: product.ID, Quantity: quantity})
	}

	newOrder, err := order.NewOrder(req.UserRef, items)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.ReserveBatch(ctx, lines, inventory.OrderSource(newOrder.ID)); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, newOrder); err != nil {
		s.compensate(ctx, newOrder.ID, lines)
		return nil, err
	}
	s.publishEvents(ctx, newOrder)

	response := orders.ToOrderResponse(newOrder)
	return &response, nil
}

// compensate returns a reservation after the order failed to persist
func (s *CheckoutService) compensate(ctx context.Context, orderID uuid.UUID, lines []inventory.ReservationLine) {
	if err := s.ledger.ReleaseBatch(ctx, lines, inventory.OrderSource(orderID)); err != nil {
		s.logger.Error("failed to release reservation for unsaved order",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

func (s *CheckoutService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, o.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}

// validateCart rejects empty carts and non-positive quantities, merging
// duplicate product lines into one
func validateCart(req CheckoutRequest) (map[uuid.UUID]int64, error) {
	if req.UserRef == uuid.Nil {
		return nil, shared.NewDomainError(shared.ErrInvalidCart.Code, "User reference cannot be empty")
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.ErrInvalidCart.Code, "Cart cannot be empty")
	}
	merged := make(map[uuid.UUID]int64, len(req.Lines))
	for _, line := range req.Lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError(shared.ErrInvalidCart.Code, "Cart line product cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError(shared.ErrInvalidCart.Code, "Cart line quantity must be positive")
		}
		merged[line.ProductID] += line.Quantity
	}
	return merged, nil
}
