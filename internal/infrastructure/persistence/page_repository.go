package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storekit/backend/internal/domain/content"
	"github.com/storekit/backend/internal/domain/shared"
)

// GormPageRepository implements content.PageRepository using GORM
type GormPageRepository struct {
	db *gorm.DB
}

// NewGormPageRepository creates a new GormPageRepository
func NewGormPageRepository(db *gorm.DB) *GormPageRepository {
	return &GormPageRepository{db: db}
}

// FindByID finds a page by its ID within a store
func (r *GormPageRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*content.Page, error) {
	var page content.Page
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &page, nil
}

// FindAllForStore finds all pages for a store
func (r *GormPageRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]content.Page, error) {
	var pages []content.Page
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Save creates or updates a page
func (r *GormPageRepository) Save(ctx context.Context, page *content.Page) error {
	return r.db.WithContext(ctx).Save(page).Error
}

// Delete removes a page from a store
func (r *GormPageRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		Delete(&content.Page{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
