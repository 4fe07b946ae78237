package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/shared"
)

// GormImportJobRepository implements bulk.ImportJobRepository using GORM
type GormImportJobRepository struct {
	db *gorm.DB
}

// NewGormImportJobRepository creates a new GormImportJobRepository
func NewGormImportJobRepository(db *gorm.DB) *GormImportJobRepository {
	return &GormImportJobRepository{db: db}
}

// FindByID finds a job by its ID within a store
func (r *GormImportJobRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*bulk.ImportJob, error) {
	var job bulk.ImportJob
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := job.LoadErrorDetails(); err != nil {
		return nil, err
	}
	return &job, nil
}

// FindAllForStore lists jobs for a store, newest first
func (r *GormImportJobRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]bulk.ImportJob, error) {
	var jobs []bulk.ImportJob
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByEntityType lists jobs of one entity type for a store
func (r *GormImportJobRepository) FindByEntityType(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType, filter shared.Filter) ([]bulk.ImportJob, error) {
	var jobs []bulk.ImportJob
	query := r.db.WithContext(ctx).
		Where("store_id = ? AND entity_type = ?", storeID, entityType).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Save creates or updates a job
func (r *GormImportJobRepository) Save(ctx context.Context, job *bulk.ImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}
