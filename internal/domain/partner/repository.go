package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Customer, error)

	// FindByEmail finds a customer by email within a store
	FindByEmail(ctx context.Context, storeID uuid.UUID, email string) (*Customer, error)

	// FindAllForStore finds all customers for a store
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// Upsert inserts or overwrites a customer keyed by its canonical ID
	Upsert(ctx context.Context, customer *Customer) error

	// Save creates a new customer with a generated ID
	Save(ctx context.Context, customer *Customer) error

	// ReplaceAddresses removes the customer's existing addresses and
	// inserts the given set in a single transaction
	ReplaceAddresses(ctx context.Context, customerID uuid.UUID, addresses []Address) error

	// FindAddresses returns the addresses for a customer
	FindAddresses(ctx context.Context, customerID uuid.UUID) ([]Address, error)
}
