package bulk

import (
	"context"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// ImportJobRepository defines the interface for import job persistence
type ImportJobRepository interface {
	// FindByID finds a job by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*ImportJob, error)

	// FindAllForStore lists jobs for a store, newest first
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]ImportJob, error)

	// FindByEntityType lists jobs of one entity type for a store
	FindByEntityType(ctx context.Context, storeID uuid.UUID, entityType EntityType, filter shared.Filter) ([]ImportJob, error)

	// Save creates or updates a job
	Save(ctx context.Context, job *ImportJob) error
}
