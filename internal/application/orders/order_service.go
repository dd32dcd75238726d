package orders

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// OrderService handles order lifecycle operations. Cancellation is the
// one transition with a side effect: the stock reserved at checkout is
// returned to the ledger once the order is terminal.
type OrderService struct {
	orderRepo      order.Repository
	ledger         *inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.Repository, ledger *inventory.StockLedger, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		ledger:    ledger,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "ordered_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.UserRef != nil {
		domainFilter.Filters["user_ref"] = *filter.UserRef
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	found, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, len(found))
	for i := range found {
		responses[i] = ToOrderResponse(&found[i])
	}
	return responses, total, nil
}

// ListByUser retrieves all orders placed by a user, newest first
func (s *OrderService) ListByUser(ctx context.Context, userRef uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	filter.UserRef = &userRef
	return s.List(ctx, filter)
}

// MarkPaid transitions a PLACED order to PAID
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.MarkPaid()
	})
}

// MarkDelivered transitions a PAID order to DELIVERED
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.MarkDelivered()
	})
}

// Cancel transitions a PLACED or PAID order to CANCELLED and returns its
// reserved stock to the ledger. The stock is released before the order
// is saved: a failed release leaves the stored order untouched so the
// cancel can be retried, and a failed save re-reserves the released
// quantities. No reader ever sees a CANCELLED order whose stock is
// still held. A second cancel of the same order fails the transition
// check before any stock moves, so the release happens exactly once.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.releaseStock(ctx, o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		s.reReserveStock(ctx, o)
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// releaseStock returns every line's reserved quantity to the ledger
func (s *OrderService) releaseStock(ctx context.Context, o *order.Order) error {
	if err := s.ledger.ReleaseBatch(ctx, reservationLines(o), inventory.OrderSource(o.ID)); err != nil {
		s.logger.Error("failed to release stock for cancelled order",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return err
	}
	return nil
}

// reReserveStock takes the released quantities back when the cancelled
// order could not be saved, so stock and order state move together.
func (s *OrderService) reReserveStock(ctx context.Context, o *order.Order) {
	if err := s.ledger.ReserveBatch(ctx, reservationLines(o), inventory.OrderSource(o.ID)); err != nil {
		s.logger.Error("failed to re-reserve stock after cancel save failure",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
}

func reservationLines(o *order.Order) []inventory.ReservationLine {
	lines := make([]inventory.ReservationLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = inventory.ReservationLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func (s *OrderService) transition(ctx context.Context, orderID uuid.UUID, apply func(*order.Order) error) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := apply(o); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
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
