package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omnitrack/backend/internal/domain/order"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// OrderRepository is an in-memory implementation of order.Repository
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]order.Order
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[uuid.UUID]order.Order),
	}
}

// FindByID finds an order by its ID, including its items
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := copyOrder(o)
	return &copied, nil
}

// FindAll finds all orders matching the filter
func (r *OrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(filter, func(o *order.Order) bool { return true })
}

// FindByUser finds orders owned by a user
func (r *OrderRepository) FindByUser(ctx context.Context, userRef uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(filter, func(o *order.Order) bool { return o.UserRef == userRef })
}

// FindByStatus finds orders with a specific status
func (r *OrderRepository) FindByStatus(ctx context.Context, status order.Status, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(filter, func(o *order.Order) bool { return o.Status == status })
}

// FindByDateRange finds orders placed within [start, end)
func (r *OrderRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]order.Order, error) {
	return r.findWhere(filter, func(o *order.Order) bool {
		return !o.OrderedAt.Before(start) && o.OrderedAt.Before(end)
	})
}

// Save creates or updates an order with its items
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[o.ID] = copyOrder(*o)
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *OrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.orders[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != o.Version-1 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Order was modified by another transaction")
	}
	r.orders[o.ID] = copyOrder(*o)
	return nil
}

// Count counts orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, o := range r.orders {
		if matchesOrderFilter(&o, filter) {
			count++
		}
	}
	return count, nil
}

// CountByStatus counts orders with a specific status
func (r *OrderRepository) CountByStatus(ctx context.Context, status order.Status) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, o := range r.orders {
		if o.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *OrderRepository) findWhere(filter shared.Filter, match func(*order.Order) bool) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]order.Order, 0)
	for _, o := range r.orders {
		if match(&o) && matchesOrderFilter(&o, filter) {
			found = append(found, copyOrder(o))
		}
	}
	sort.Slice(found, func(a, b int) bool { return found[a].OrderedAt.Before(found[b].OrderedAt) })
	return paginate(found, filter), nil
}

func matchesOrderFilter(o *order.Order, filter shared.Filter) bool {
	for key, value := range filter.Filters {
		switch key {
		case "user_ref":
			if ref, ok := value.(uuid.UUID); !ok || o.UserRef != ref {
				return false
			}
		case "status":
			if o.Status.String() != value {
				return false
			}
		case "start_date":
			if t, ok := value.(time.Time); !ok || o.OrderedAt.Before(t) {
				return false
			}
		case "end_date":
			if t, ok := value.(time.Time); !ok || !o.OrderedAt.Before(t) {
				return false
			}
		}
	}
	return true
}

// copyOrder deep-copies an order so callers never share item slices
func copyOrder(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// Ensure OrderRepository implements order.Repository
var _ order.Repository = (*OrderRepository)(nil)
