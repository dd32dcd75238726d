package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omnitrack/backend/internal/domain/shared"
	"github.com/omnitrack/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Status represents the status of an order
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusPaid      Status = "PAID"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlaced, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is permitted from this status
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPlaced:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusDelivered || target == StatusCancelled
	case StatusDelivered, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// Item represents a line item in an order.
// Quantity and unit price are snapshots taken at checkout and are
// immutable once the order exists: the unit price is decoupled from the
// live product price to preserve historical accuracy, and the quantity
// is the implicit stock reservation released on cancellation.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// NewItem creates a new order item snapshot
func NewItem(productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Item{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      unitPrice.MultiplyByInt(quantity).Amount(),
		CreatedAt:   time.Now(),
	}, nil
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *Item) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.UnitPrice)
}

// GetAmountMoney returns the line amount as Money value object
func (i *Item) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.Amount)
}

// Order is the aggregate root for a customer order.
// Orders are created exclusively by checkout in PLACED status with stock
// already reserved, and are never deleted: CANCELLED is terminal, not removal.
type Order struct {
	shared.BaseAggregateRoot
	UserRef      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status       Status          `gorm:"type:varchar(20);not null;index"`
	Items        []Item          `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderedAt    time.Time       `gorm:"not null;index"`
	PaidAt       *time.Time
	DeliveredAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in PLACED status from checkout item snapshots
func NewOrder(userRef uuid.UUID, items []Item) (*Order, error) {
	if userRef == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User reference cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot create order without items")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserRef:           userRef,
		Status:            StatusPlaced,
		Items:             make([]Item, 0, len(items)),
		TotalAmount:       decimal.Zero,
		OrderedAt:         time.Now(),
	}

	total := decimal.Zero
	for idx := range items {
		item := items[idx]
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// MarkPaid transitions the order from PLACED to PAID
func (o *Order) MarkPaid() error {
	if err := o.checkTransition(StatusPaid); err != nil {
		return err
	}

	now := time.Now()
	o.Status = StatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))

	return nil
}

// MarkDelivered transitions the order from PAID to DELIVERED
func (o *Order) MarkDelivered() error {
	if err := o.checkTransition(StatusDelivered); err != nil {
		return err
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Cancel transitions the order from PLACED or PAID to CANCELLED.
// The caller (order application service) is responsible for releasing the
// reserved stock in the same atomic step.
func (o *Order) Cancel(reason string) error {
	if err := o.checkTransition(StatusCancelled); err != nil {
		return err
	}

	wasPaid := o.Status == StatusPaid
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, wasPaid))

	return nil
}

// TransitionTo applies the transition to the target status, dispatching to
// the corresponding lifecycle method
func (o *Order) TransitionTo(target Status) error {
	switch target {
	case StatusPaid:
		return o.MarkPaid()
	case StatusDelivered:
		return o.MarkDelivered()
	case StatusCancelled:
		return o.Cancel("")
	default:
		return shared.NewDomainError(shared.ErrIllegalTransition.Code,
			fmt.Sprintf("Unknown target status %s", target))
	}
}

func (o *Order) checkTransition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrIllegalTransition.Code,
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}
	return nil
}

// GetTotalAmountMoney returns the order total as Money
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// IsPlaced returns true if the order is in PLACED status
func (o *Order) IsPlaced() bool {
	return o.Status == StatusPlaced
}

// IsPaid returns true if the order is in PAID status
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// IsDelivered returns true if the order is delivered
func (o *Order) IsDelivered() bool {
	return o.Status == StatusDelivered
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// GetItemByProduct returns an item by product ID
func (o *Order) GetItemByProduct(productID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}
