package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
	"github.com/omnitrack/backend/internal/domain/shared/valueobject"
	"github.com/omnitrack/backend/internal/infrastructure/persistence/memory"
)

type inventoryFixture struct {
	service  *InventoryService
	products *memory.ProductRepository
	ledger   *inventory.StockLedger
}

func newInventoryFixture() *inventoryFixture {
	products := memory.NewProductRepository()
	transactions := memory.NewStockTransactionRepository()
	ledger := inventory.NewStockLedger(products, transactions, nil, zap.NewNop())

	return &inventoryFixture{
		service:  NewInventoryService(ledger, products, transactions),
		products: products,
		ledger:   ledger,
	}
}

func (f *inventoryFixture) addProduct(t *testing.T, name string, stock, threshold int64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "tools", "SKU-"+uuid.NewString()[:8],
		valueobject.NewMoneyUSD(decimal.RequireFromString("5.00")), stock, threshold)
	require.NoError(t, err)
	require.NoError(t, f.products.Save(context.Background(), product))
	return product
}

func TestInventoryService_Restock(t *testing.T) {
	ctx := context.Background()

	t.Run("raises the stock level", func(t *testing.T) {
		f := newInventoryFixture()
		product := f.addProduct(t, "Widget", 4, 0)

		level, err := f.service.Restock(ctx, product.ID, RestockRequest{Quantity: 20, Reference: "PO-3001"})
		require.NoError(t, err)
		assert.Equal(t, int64(24), level.AvailableQuantity)

		movements, total, err := f.service.ListTransactions(ctx, TransactionListFilter{ProductID: &product.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.TransactionTypeRestock.String(), movements[0].Type)
		assert.Equal(t, "PO-3001", movements[0].SourceID)
	})

	t.Run("fails for an unknown product", func(t *testing.T) {
		f := newInventoryFixture()
		_, err := f.service.Restock(ctx, uuid.New(), RestockRequest{Quantity: 5})
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		f := newInventoryFixture()
		product := f.addProduct(t, "Widget", 4, 0)
		_, err := f.service.Restock(ctx, product.ID, RestockRequest{Quantity: 0})
		require.Error(t, err)
	})
}

func TestInventoryService_GetStockLevel(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture()
	product := f.addProduct(t, "Widget", 3, 5)

	level, err := f.service.GetStockLevel(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, level.ProductID)
	assert.Equal(t, "Widget", level.ProductName)
	assert.Equal(t, int64(3), level.AvailableQuantity)
	assert.Equal(t, int64(5), level.LowStockThreshold)
	assert.True(t, level.IsLow)

	_, err = f.service.GetStockLevel(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestInventoryService_ListLowStock(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture()
	f.addProduct(t, "Healthy", 50, 5)
	low := f.addProduct(t, "Low", 2, 5)
	empty := f.addProduct(t, "Empty", 0, 5)

	items, err := f.service.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, empty.ID, items[0].ProductID)
	assert.Equal(t, int64(5), items[0].Shortfall)
	assert.Equal(t, low.ID, items[1].ProductID)
	assert.Equal(t, int64(3), items[1].Shortfall)
}

func TestInventoryService_ListTransactions(t *testing.T) {
	ctx := context.Background()
	f := newInventoryFixture()
	widget := f.addProduct(t, "Widget", 10, 0)
	gadget := f.addProduct(t, "Gadget", 10, 0)

	orderID := uuid.New()
	require.NoError(t, f.ledger.Reserve(ctx, widget.ID, 4, inventory.OrderSource(orderID)))
	require.NoError(t, f.ledger.Release(ctx, widget.ID, 4, inventory.OrderSource(orderID)))
	_, err := f.service.Restock(ctx, gadget.ID, RestockRequest{Quantity: 5, Reference: "PO-1"})
	require.NoError(t, err)

	t.Run("lists everything newest first", func(t *testing.T) {
		movements, total, err := f.service.ListTransactions(ctx, TransactionListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, movements, 3)
	})

	t.Run("filters by product", func(t *testing.T) {
		movements, total, err := f.service.ListTransactions(ctx, TransactionListFilter{ProductID: &widget.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, m := range movements {
			assert.Equal(t, widget.ID, m.ProductID)
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		saleType := inventory.TransactionTypeSale.String()
		movements, total, err := f.service.ListTransactions(ctx, TransactionListFilter{Type: &saleType})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, movements, 1)
		assert.Equal(t, int64(-4), movements[0].Quantity)
	})

	t.Run("paginates", func(t *testing.T) {
		movements, total, err := f.service.ListTransactions(ctx, TransactionListFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, movements, 1)
	})
}
