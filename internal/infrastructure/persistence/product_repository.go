package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/shared"
)

// upsertColumns are overwritten when an imported row collides on ID
func upsertAll() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}
}

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID within a store
func (r *GormProductRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds the product owning a variant with the given SKU.
// Variants are embedded JSON, so the lookup scans the store's products.
func (r *GormProductRepository) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.Product, error) {
	if sku == "" {
		return nil, shared.ErrNotFound
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].VariantBySKU(sku) != nil {
			return &products[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAllForStore finds all products for a store
func (r *GormProductRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Upsert inserts the product or overwrites the existing row with the
// same canonical ID
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Clauses(upsertAll()).Create(product).Error
}

// Save updates an existing product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product from a store
func (r *GormProductRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		Delete(&catalog.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForStore counts products in a store
func (r *GormProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("store_id = ?", storeID).
		Count(&count).Error
	return count, err
}

// GormCollectionRepository implements catalog.CollectionRepository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

// FindByID finds a collection by its ID within a store
func (r *GormCollectionRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Collection, error) {
	var collection catalog.Collection
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&collection).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &collection, nil
}

// FindAllForStore finds all collections for a store
func (r *GormCollectionRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Collection, error) {
	var collections []catalog.Collection
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// Upsert inserts or overwrites a collection keyed by its canonical ID
func (r *GormCollectionRepository) Upsert(ctx context.Context, collection *catalog.Collection) error {
	return r.db.WithContext(ctx).Clauses(upsertAll()).Create(collection).Error
}

// Delete removes a collection from a store
func (r *GormCollectionRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		Delete(&catalog.Collection{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
