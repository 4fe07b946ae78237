package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Product, error)

	// FindBySKU finds the product owning a variant with the given SKU
	FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*Product, error)

	// FindAllForStore finds all products for a store
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Product, error)

	// Upsert inserts the product or, when a product with the same ID
	// already exists, overwrites its imported fields
	Upsert(ctx context.Context, product *Product) error

	// Save updates an existing product
	Save(ctx context.Context, product *Product) error

	// Delete removes a product from a store
	Delete(ctx context.Context, storeID, id uuid.UUID) error

	// CountForStore counts products in a store
	CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error)
}

// CollectionRepository defines the interface for collection persistence
type CollectionRepository interface {
	// FindByID finds a collection by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Collection, error)

	// FindAllForStore finds all collections for a store
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Collection, error)

	// Upsert inserts or overwrites a collection keyed by its canonical ID
	Upsert(ctx context.Context, collection *Collection) error

	// Delete removes a collection from a store
	Delete(ctx context.Context, storeID, id uuid.UUID) error
}
