package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by its ID, including its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByUser finds orders owned by a user
	FindByUser(ctx context.Context, userRef uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders with a specific status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, error)

	// FindByDateRange finds orders placed within [start, end)
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders with a specific status
	CountByStatus(ctx context.Context, status Status) (int64, error)
}
