package checkout

import (
	"context"
	"sync"
	"testing"

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

type checkoutFixture struct {
	service     *CheckoutService
	products    *memory.ProductRepository
	orders      *memory.OrderRepository
	ledger      *inventory.StockLedger
	transaction *memory.StockTransactionRepository
	published   *eventRecorder
}

type eventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *eventRecorder) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

func newCheckoutFixture() *checkoutFixture {
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	transactions := memory.NewStockTransactionRepository()
	recorder := &eventRecorder{}
	ledger := inventory.NewStockLedger(products, transactions, recorder, zap.NewNop())

	service := NewCheckoutService(products, orders, ledger, zap.NewNop())
	service.SetEventPublisher(recorder)

	return &checkoutFixture{
		service:     service,
		products:    products,
		orders:      orders,
		ledger:      ledger,
		transaction: transactions,
		published:   recorder,
	}
}

func (f *checkoutFixture) addProduct(t *testing.T, name string, price string, stock int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "tools", "SKU-"+uuid.NewString()[:8],
		valueobject.NewMoneyUSD(decimal.RequireFromString(price)), stock, 0)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), product))
	return product
}

func (f *checkoutFixture) stockOf(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	product, err := f.products.FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.AvailableQuantity
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	userRef := uuid.New()

	t.Run("places an order and reserves stock", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "9.99", 10)
		gadget := f.addProduct(t, "Gadget", "25.00", 5)

		resp, err := f.service.PlaceOrder(ctx, CheckoutRequest{
			UserRef: userRef,
			Lines: []CartLine{
				{ProductID: widget.ID, Quantity: 2},
				{ProductID: gadget.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, order.StatusPlaced.String(), resp.Status)
		assert.Equal(t, userRef, resp.UserRef)
		assert.Equal(t, 2, resp.ItemCount)
		assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("44.98")),
			"got %s", resp.TotalAmount)

		assert.Equal(t, int64(8), f.stockOf(t, widget.ID))
		assert.Equal(t, int64(4), f.stockOf(t, gadget.ID))

		saved, err := f.orders.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPlaced, saved.Status)
		require.Len(t, saved.Items, 2)

		assert.Contains(t, f.published.types(), order.EventTypeOrderPlaced)
	})

	t.Run("snapshots the unit price at checkout", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "10.00", 10)

		resp, err := f.service.PlaceOrder(ctx, CheckoutRequest{
			UserRef: userRef,
			Lines:   []CartLine{{ProductID: widget.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		// Raise the catalog price after the order exists.
		product, err := f.products.FindByID(ctx, widget.ID)
		require.NoError(t, err)
		require.NoError(t, product.UpdatePrice(valueobject.NewMoneyUSD(decimal.RequireFromString("99.00"))))
		require.NoError(t, f.products.SaveWithLock(ctx, product))

		saved, err := f.orders.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.True(t, saved.TotalAmount.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, saved.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("merges duplicate lines", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "10.00", 10)

		resp, err := f.service.PlaceOrder(ctx, CheckoutRequest{
			UserRef: userRef,
			Lines: []CartLine{
				{ProductID: widget.ID, Quantity: 2},
				{ProductID: widget.ID, Quantity: 3},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, resp.ItemCount)
		assert.Equal(t, int64(5), resp.Items[0].Quantity)
		assert.Equal(t, int64(5), f.stockOf(t, widget.ID))
	})

	t.Run("rejects invalid carts", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "10.00", 10)

		cases := []struct {
			name string
			req  CheckoutRequest
		}{
			{"missing user", CheckoutRequest{Lines: []CartLine{{ProductID: widget.ID, Quantity: 1}}}},
			{"empty cart", CheckoutRequest{UserRef: userRef}},
			{"nil product", CheckoutRequest{UserRef: userRef, Lines: []CartLine{{Quantity: 1}}}},
			{"zero quantity", CheckoutRequest{UserRef: userRef, Lines: []CartLine{{ProductID: widget.ID, Quantity: 0}}}},
			{"negative quantity", CheckoutRequest{UserRef: userRef, Lines: []CartLine{{ProductID: widget.ID, Quantity: -1}}}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.service.PlaceOrder(ctx, tc.req)
				require.Error(t, err)
				assert.True(t, shared.IsCode(err, shared.ErrInvalidCart.Code))
			})
		}
		assert.Equal(t, int64(10), f.stockOf(t, widget.ID), "failed checkouts leave stock untouched")
	})

	t.Run("fails for unknown product", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "10.00", 10)

		_, err := f.service.PlaceOrder(ctx, CheckoutRequest{
			UserRef: userRef,
			Lines: []CartLine{
				{ProductID: widget.ID, Quantity: 1},
				{ProductID: uuid.New(), Quantity: 1},
			},
		})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrInvalidCart.Code))
		assert.Equal(t, int64(10), f.stockOf(t, widget.ID))

		count, err := f.orders.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("insufficient stock leaves everything untouched", func(t *testing.T) {
		f := newCheckoutFixture()
		widget := f.addProduct(t, "Widget", "10.00", 10)
		gadget := f.addProduct(t, "Gadget", "25.00", 1)

		_, err := f.service.PlaceOrder(ctx, CheckoutRequest{
			UserRef: userRef,
			Lines: []CartLine{
				{ProductID: widget.ID, Quantity: 2},
				{ProductID: gadget.ID, Quantity: 2},
			},
		})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrInsufficientStock.Code))

		assert.Equal(t, int64(10), f.stockOf(t, widget.ID))
		assert.Equal(t, int64(1), f.stockOf(t, gadget.ID))

		count, err := f.orders.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.NotContains(t, f.published.types(), order.EventTypeOrderPlaced)
	})

	t.Run("enforces the distinct product cap", func(t *testing.T) {
		f := newCheckoutFixture()
		f.service.WithMaxCartLines(2)

		lines := make([]CartLine, 0, 3)
		for i := 0; i < 3; i++ {
			product := f.addProduct(t, "Widget", "10.00", 10)
			lines = append(lines, CartLine{ProductID: product.ID, Quantity: 1})
		}

		_, err := f.service.PlaceOrder(ctx, CheckoutRequest{UserRef: userRef, Lines: lines})
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.ErrInvalidCart.Code))
	})
}

func TestCheckoutService_ConcurrentCheckouts(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	widget := f.addProduct(t, "Widget", "10.00", 30)

	const workers = 50
	var wg sync.WaitGroup
	var placed int64
	var mu sync.Mutex

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.service.PlaceOrder(ctx, CheckoutRequest{
				UserRef: uuid.New(),
				Lines:   []CartLine{{ProductID: widget.ID, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(30), placed, "only the available quantity can be sold")
	assert.Equal(t, int64(0), f.stockOf(t, widget.ID))

	count, err := f.orders.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}
