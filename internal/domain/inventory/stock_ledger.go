package inventory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnitrack/backend/internal/domain/catalog"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// ReservationLine is a single product/quantity pair in a batch operation
type ReservationLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// StockLevel is a read-only snapshot of a product's stock position
type StockLevel struct {
	ProductID         uuid.UUID
	ProductName       string
	SKU               string
	AvailableQuantity int64
	LowStockThreshold int64
	IsLow             bool
}

// StockLedger serializes all stock movements for the platform. Every
// mutation of a product's available quantity goes through this service
// under a per-product mutex, so concurrent reservations can never drive
// a quantity negative. Batch operations hold every involved product's
// lock for the whole check-and-apply, which makes a multi-item
// reservation all-or-nothing.
type StockLedger struct {
	products     catalog.ProductRepository
	transactions StockTransactionRepository
	publisher    shared.EventPublisher
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewStockLedger creates a new stock ledger
func NewStockLedger(
	products catalog.ProductRepository,
	transactions StockTransactionRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StockLedger {
	return &StockLedger{
		products:     products,
		transactions: transactions,
		publisher:    publisher,
		logger:       logger,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding a product, creating it on first use.
// Lock entries are never removed; the set of products is small relative
// to the traffic through each.
func (l *StockLedger) lockFor(productID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	return m
}

// lockAll acquires the mutexes for every given product in ascending ID
// order, so two overlapping batches can never deadlock. The returned
// function releases them in reverse order.
func (l *StockLedger) lockAll(productIDs []uuid.UUID) func() {
	ids := make([]uuid.UUID, len(productIDs))
	copy(ids, productIDs)
	sort.Slice(ids, func(a, b int) bool { return ids[a].String() < ids[b].String() })

	held := make([]*sync.Mutex, 0, len(ids))
	var prev uuid.UUID
	for i, id := range ids {
		if i > 0 && id == prev {
			continue
		}
		m := l.lockFor(id)
		m.Lock()
		held = append(held, m)
		prev = id
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Reserve atomically decrements a product's available quantity. It fails
// with INSUFFICIENT_STOCK when the product cannot cover the quantity and
// leaves the quantity untouched in that case.
func (l *StockLedger) Reserve(ctx context.Context, productID uuid.UUID, quantity int64, source Source) error {
	return l.ReserveBatch(ctx, []ReservationLine{{ProductID: productID, Quantity: quantity}}, source)
}

// ReserveBatch atomically decrements stock for every line, or for none.
// All involved product locks are held across the availability check and
// the writes, so a concurrent batch sees either all of this batch's
// effects or none of them.
func (l *StockLedger) ReserveBatch(ctx context.Context, lines []ReservationLine, source Source) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_RESERVATION", "Reservation must contain at least one line")
	}
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	unlock := l.lockAll(ids)
	defer unlock()

	products, err := l.loadProducts(ctx, ids)
	if err != nil {
		return err
	}

	// Check every line before touching anything.
	for id, qty := range merged {
		if !products[id].CanFulfill(qty) {
			return shared.NewDomainError(shared.ErrInsufficientStock.Code,
				"Insufficient stock for product "+products[id].Name)
		}
	}

	saved := make([]*catalog.Product, 0, len(merged))
	for id, qty := range merged {
		product := products[id]
		if err := product.DecrementStock(qty); err != nil {
			l.compensate(ctx, saved, merged)
			return err
		}
		if err := l.products.SaveWithLock(ctx, product); err != nil {
			l.compensate(ctx, saved, merged)
			return err
		}
		saved = append(saved, product)

		l.record(ctx, product, TransactionTypeSale, -qty, source)
		l.publish(ctx, NewStockReservedEvent(product.ID, qty, product.AvailableQuantity, source))
		l.warnIfLow(ctx, product)
	}
	return nil
}

// Release atomically returns a reserved quantity to a product
func (l *StockLedger) Release(ctx context.Context, productID uuid.UUID, quantity int64, source Source) error {
	return l.ReleaseBatch(ctx, []ReservationLine{{ProductID: productID, Quantity: quantity}}, source)
}

// ReleaseBatch returns reserved quantities to stock. Unlike reservation
// it cannot fail on availability; each line is applied independently and
// the first persistence error aborts the rest.
func (l *StockLedger) ReleaseBatch(ctx context.Context, lines []ReservationLine, source Source) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_RESERVATION", "Release must contain at least one line")
	}
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	unlock := l.lockAll(ids)
	defer unlock()

	products, err := l.loadProducts(ctx, ids)
	if err != nil {
		return err
	}

	for id, qty := range merged {
		product := products[id]
		if err := product.IncrementStock(qty); err != nil {
			return err
		}
		if err := l.products.SaveWithLock(ctx, product); err != nil {
			return err
		}

		l.record(ctx, product, TransactionTypeRelease, qty, source)
		l.publish(ctx, NewStockReleasedEvent(product.ID, qty, product.AvailableQuantity, source))
	}
	return nil
}

// Restock replenishes a product's available quantity
func (l *StockLedger) Restock(ctx context.Context, productID uuid.UUID, quantity int64, source Source) (*StockLevel, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}

	m := l.lockFor(productID)
	m.Lock()
	defer m.Unlock()

	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.IncrementStock(quantity); err != nil {
		return nil, err
	}
	if err := l.products.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	l.record(ctx, product, TransactionTypeRestock, quantity, source)
	l.publish(ctx, NewStockRestockedEvent(product.ID, quantity, product.AvailableQuantity))

	level := snapshot(product)
	return &level, nil
}

// Peek reads a product's current stock position without mutating it
func (l *StockLedger) Peek(ctx context.Context, productID uuid.UUID) (*StockLevel, error) {
	product, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	level := snapshot(product)
	return &level, nil
}

// compensate rolls back already-applied decrements after a mid-batch
// failure. Locks are still held by the caller.
func (l *StockLedger) compensate(ctx context.Context, saved []*catalog.Product, merged map[uuid.UUID]int64) {
	for _, product := range saved {
		qty := merged[product.ID]
		if err := product.IncrementStock(qty); err != nil {
			l.logger.Error("failed to roll back stock reservation",
				zap.String("product_id", product.ID.String()),
				zap.Int64("quantity", qty),
				zap.Error(err))
			continue
		}
		if err := l.products.SaveWithLock(ctx, product); err != nil {
			l.logger.Error("failed to roll back stock reservation",
				zap.String("product_id", product.ID.String()),
				zap.Int64("quantity", qty),
				zap.Error(err))
		}
	}
}

// loadProducts fetches every product or fails if any is missing
func (l *StockLedger) loadProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	found, err := l.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Product not found: "+id.String())
		}
	}
	return byID, nil
}

// record appends an audit transaction. Audit failures are logged, never
// propagated: the stock movement itself has already been committed.
func (l *StockLedger) record(ctx context.Context, product *catalog.Product, txType TransactionType, delta int64, source Source) {
	tx, err := NewStockTransaction(product.ID, txType, delta, product.AvailableQuantity, source)
	if err != nil {
		l.logger.Error("failed to build stock transaction",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return
	}
	if err := l.transactions.Append(ctx, tx); err != nil {
		l.logger.Error("failed to append stock transaction",
			zap.String("product_id", product.ID.String()),
			zap.String("type", txType.String()),
			zap.Error(err))
	}
}

func (l *StockLedger) publish(ctx context.Context, event shared.DomainEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish stock event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

func (l *StockLedger) warnIfLow(ctx context.Context, product *catalog.Product) {
	if !product.IsLowStock() {
		return
	}
	l.publish(ctx, NewStockBelowThresholdEvent(
		product.ID, product.Name, product.AvailableQuantity, product.LowStockThreshold))
}

// mergeLines collapses duplicate product lines and validates quantities
func mergeLines(lines []ReservationLine) (map[uuid.UUID]int64, error) {
	merged := make(map[uuid.UUID]int64, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		merged[line.ProductID] += line.Quantity
	}
	return merged, nil
}

func snapshot(product *catalog.Product) StockLevel {
	return StockLevel{
		ProductID:         product.ID,
		ProductName:       product.Name,
		SKU:               product.SKU,
		AvailableQuantity: product.AvailableQuantity,
		LowStockThreshold: product.LowStockThreshold,
		IsLow:             product.IsLowStock(),
	}
}
