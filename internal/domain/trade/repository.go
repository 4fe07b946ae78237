package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number within a
	// store. The lookup is case-insensitive.
	FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*Order, error)

	// FindAllForStore finds all orders for a store
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Upsert inserts or overwrites an order keyed by its canonical ID
	Upsert(ctx context.Context, order *Order) error

	// Insert creates a new order
	Insert(ctx context.Context, order *Order) error

	// ReplaceLineItems removes the order's existing line items and
	// inserts the given set in a single transaction
	ReplaceLineItems(ctx context.Context, orderID uuid.UUID, items []LineItem) error

	// InsertLineItems appends line items to an order
	InsertLineItems(ctx context.Context, items []LineItem) error

	// FindLineItems returns the line items for an order
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]LineItem, error)

	// ReplaceRefunds removes the order's existing refunds and inserts
	// the given set in a single transaction
	ReplaceRefunds(ctx context.Context, orderID uuid.UUID, refunds []Refund) error

	// FindRefunds returns the refunds for an order
	FindRefunds(ctx context.Context, orderID uuid.UUID) ([]Refund, error)
}
