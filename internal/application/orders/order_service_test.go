package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/shared"
	"github.com/omnitrack/backend/internal/domain/shared/valueobject"
	"github.com/omnitrack/backend/internal/infrastructure/persistence/memory"
)

type orderFixture struct {
	service  *OrderService
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	ledger   *inventory.StockLedger
}

func newOrderFixture() *orderFixture {
	products := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()
	transactions := memory.NewStockTransactionRepository()
	ledger := inventory.NewStockLedger(products, transactions, nil, zap.NewNop())

	return &orderFixture{
		service:  NewOrderService(orderRepo, ledger, zap.NewNop()),
		products: products,
		orders:   orderRepo,
		ledger:   ledger,
	}
}

// placeOrder seeds a product and a PLACED order with its stock reserved,
// the state checkout leaves behind.
func (f *orderFixture) placeOrder(t *testing.T, userRef uuid.UUID, quantity, stock int64) (*order.Order, *catalog.Product) {
	t.Helper()
	ctx := context.Background()

	product, err := catalog.NewProduct("Widget", "tools", "SKU-"+uuid.NewString()[:8],
		valueobject.NewMoneyUSD(decimal.RequireFromString("10.00")), stock, 0)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(ctx, product))

	item, err := order.NewItem(product.ID, product.Name, quantity, product.GetUnitPriceMoney())
	require.NoError(t, err)
	o, err := order.NewOrder(userRef, []order.Item{*item})
	require.NoError(t, err)
	o.ClearDomainEvents()

	require.NoError(t, f.ledger.Reserve(ctx, product.ID, quantity, inventory.OrderSource(o.ID)))
	require.NoError(t, f.orders.Save(ctx, o))
	return o, product
}

func (f *orderFixture) stockOf(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	product, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.AvailableQuantity
}

func TestOrderService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions and persists", func(t *testing.T) {
		f := newOrderFixture()
		o, _ := f.placeOrder(t, uuid.New(), 2, 10)

		resp, err := f.service.MarkPaid(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid.String(), resp.Status)
		require.NotNil(t, resp.PaidAt)

		saved, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPaid, saved.Status)
	})

	t.Run("fails for unknown order", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.service.MarkPaid(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("fails on a cancelled order", func(t *testing.T) {
		f := newOrderFixture()
		o, _ := f.placeOrder(t, uuid.New(), 2, 10)
		_, err := f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.NoError(t, err)

		_, err = f.service.MarkPaid(ctx, o.ID)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrIllegalTransition.Code))
	})
}

func TestOrderService_MarkDelivered(t *testing.T) {
	ctx := context.Background()

	t.Run("requires PAID first", func(t *testing.T) {
		f := newOrderFixture()
		o, _ := f.placeOrder(t, uuid.New(), 2, 10)

		_, err := f.service.MarkDelivered(ctx, o.ID)
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrIllegalTransition.Code))

		_, err = f.service.MarkPaid(ctx, o.ID)
		require.NoError(t, err)

		resp, err := f.service.MarkDelivered(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered.String(), resp.Status)
		require.NotNil(t, resp.DeliveredAt)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("releases the reserved stock", func(t *testing.T) {
		f := newOrderFixture()
		o, product := f.placeOrder(t, uuid.New(), 3, 10)
		require.Equal(t, int64(7), f.stockOf(t, product.ID))

		resp, err := f.service.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "changed my mind"})
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled.String(), resp.Status)
		assert.Equal(t, "changed my mind", resp.CancelReason)
		require.NotNil(t, resp.CancelledAt)

		assert.Equal(t, int64(10), f.stockOf(t, product.ID), "cancellation restores the full quantity")
	})

	t.Run("releases stock for a PAID order", func(t *testing.T) {
		f := newOrderFixture()
		o, product := f.placeOrder(t, uuid.New(), 3, 10)
		_, err := f.service.MarkPaid(ctx, o.ID)
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, o.ID, CancelOrderRequest{Reason: "refund"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), f.stockOf(t, product.ID))
	})

	t.Run("second cancel fails before any stock moves", func(t *testing.T) {
		f := newOrderFixture()
		o, product := f.placeOrder(t, uuid.New(), 3, 10)

		_, err := f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.NoError(t, err)
		require.Equal(t, int64(10), f.stockOf(t, product.ID))

		_, err = f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrIllegalTransition.Code))
		assert.Equal(t, int64(10), f.stockOf(t, product.ID), "stock is never released twice")
	})

	t.Run("fails on a delivered order", func(t *testing.T) {
		f := newOrderFixture()
		o, product := f.placeOrder(t, uuid.New(), 3, 10)
		_, err := f.service.MarkPaid(ctx, o.ID)
		require.NoError(t, err)
		_, err = f.service.MarkDelivered(ctx, o.ID)
		require.NoError(t, err)

		_, err = f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrIllegalTransition.Code))
		assert.Equal(t, int64(7), f.stockOf(t, product.ID), "delivered orders keep their stock")
	})

	t.Run("failed release leaves the order open for retry", func(t *testing.T) {
		f := newOrderFixture()
		userRef := uuid.New()

		product, err := catalog.NewProduct("Widget", "tools", "SKU-"+uuid.NewString()[:8],
			valueobject.NewMoneyUSD(decimal.RequireFromString("10.00")), 10, 0)
		require.NoError(t, err)
		require.NoError(t, f.products.Save(ctx, product))

		known, err := order.NewItem(product.ID, product.Name, 3, product.GetUnitPriceMoney())
		require.NoError(t, err)
		phantom, err := order.NewItem(uuid.New(), "Gone", 1, product.GetUnitPriceMoney())
		require.NoError(t, err)
		o, err := order.NewOrder(userRef, []order.Item{*known, *phantom})
		require.NoError(t, err)
		o.ClearDomainEvents()
		require.NoError(t, f.ledger.Reserve(ctx, product.ID, 3, inventory.OrderSource(o.ID)))
		require.NoError(t, f.orders.Save(ctx, o))

		_, err = f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))

		stored, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPlaced, stored.Status, "a failed release must not cancel the order")
		assert.Equal(t, int64(7), f.stockOf(t, product.ID))

		_, err = f.service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.Error(t, err, "the order stays cancellable, not stuck in a terminal state")
		assert.False(t, shared.IsCode(err, shared.ErrIllegalTransition.Code))
	})

	t.Run("failed save re-reserves the released stock", func(t *testing.T) {
		f := newOrderFixture()
		o, product := f.placeOrder(t, uuid.New(), 3, 10)
		require.Equal(t, int64(7), f.stockOf(t, product.ID))

		failing := &saveFailOrderRepository{OrderRepository: f.orders, fail: true}
		service := NewOrderService(failing, f.ledger, zap.NewNop())

		_, err := service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.Error(t, err)
		assert.Equal(t, int64(7), f.stockOf(t, product.ID), "stock and order state move together")

		stored, err := f.orders.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPlaced, stored.Status)

		failing.fail = false
		_, err = service.Cancel(ctx, o.ID, CancelOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(10), f.stockOf(t, product.ID))
	})
}

// saveFailOrderRepository makes SaveWithLock fail on demand.
type saveFailOrderRepository struct {
	*memory.OrderRepository
	fail bool
}

func (r *saveFailOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	if r.fail {
		return shared.NewDomainError("STORE_UNAVAILABLE", "order store unavailable")
	}
	return r.OrderRepository.SaveWithLock(ctx, o)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	o, _ := f.placeOrder(t, uuid.New(), 2, 10)

	resp, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, resp.ID)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("20.00")))

	_, err = f.service.GetByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	alice := uuid.New()
	bob := uuid.New()
	f.placeOrder(t, alice, 1, 10)
	f.placeOrder(t, alice, 1, 10)
	cancelled, _ := f.placeOrder(t, bob, 1, 10)
	_, err := f.service.Cancel(ctx, cancelled.ID, CancelOrderRequest{})
	require.NoError(t, err)

	t.Run("lists everything", func(t *testing.T) {
		responses, total, err := f.service.List(ctx, OrderListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, responses, 3)
	})

	t.Run("filters by user", func(t *testing.T) {
		responses, total, err := f.service.ListByUser(ctx, alice, OrderListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, resp := range responses {
			assert.Equal(t, alice, resp.UserRef)
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		status := order.StatusCancelled
		responses, total, err := f.service.List(ctx, OrderListFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, responses, 1)
		assert.Equal(t, cancelled.ID, responses[0].ID)
	})

	t.Run("filters by date range", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		future := time.Now().Add(time.Hour)
		_, total, err := f.service.List(ctx, OrderListFilter{StartDate: &past, EndDate: &future})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		_, total, err = f.service.List(ctx, OrderListFilter{StartDate: &future})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("paginates", func(t *testing.T) {
		responses, total, err := f.service.List(ctx, OrderListFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, responses, 2)

		responses, _, err = f.service.List(ctx, OrderListFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, responses, 1)
	})
}
