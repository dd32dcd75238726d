package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnitrack/backend/internal/domain/inventory"
	"github.com/omnitrack/backend/internal/domain/shared"
)

func appendTransaction(t *testing.T, repo *StockTransactionRepository, productID uuid.UUID, txType inventory.TransactionType, quantity, after int64, source inventory.Source) *inventory.StockTransaction {
	t.Helper()
	tx, err := inventory.NewStockTransaction(productID, txType, quantity, after, source)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), tx))
	return tx
}

func TestStockTransactionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStockTransactionRepository()

	widget := uuid.New()
	gadget := uuid.New()
	orderID := uuid.New()
	sale := appendTransaction(t, repo, widget, inventory.TransactionTypeSale, -4, 6, inventory.OrderSource(orderID))
	appendTransaction(t, repo, widget, inventory.TransactionTypeRelease, 4, 10, inventory.OrderSource(orderID))
	appendTransaction(t, repo, gadget, inventory.TransactionTypeRestock, 5, 15, inventory.ManualSource("PO-1"))

	t.Run("FindByID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(-4), found.Quantity)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("FindByProduct", func(t *testing.T) {
		found, err := repo.FindByProduct(ctx, widget, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, found, 2)

		count, err := repo.CountByProduct(ctx, widget, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("FindBySource links movements to their document", func(t *testing.T) {
		found, err := repo.FindBySource(ctx, inventory.OrderSource(orderID))
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, inventory.TransactionTypeSale, found[0].Type)
		assert.Equal(t, inventory.TransactionTypeRelease, found[1].Type)
	})

	t.Run("type filter", func(t *testing.T) {
		found, err := repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{
			"type": inventory.TransactionTypeRestock.String(),
		}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, gadget, found[0].ProductID)

		count, err := repo.Count(ctx, shared.Filter{Filters: map[string]interface{}{
			"source_type": string(inventory.SourceTypeOrder),
		}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
