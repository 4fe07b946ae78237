package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/domain/trade"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID within a store
func (r *GormOrderRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its order number within a store,
// case-insensitively
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*trade.Order, error) {
	if orderNumber == "" {
		return nil, shared.ErrNotFound
	}
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND LOWER(order_number) = LOWER(?)", storeID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForStore finds all orders for a store
func (r *GormOrderRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Upsert inserts or overwrites an order keyed by its canonical ID
func (r *GormOrderRepository) Upsert(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Clauses(upsertAll()).Create(order).Error
}

// Insert creates a new order
func (r *GormOrderRepository) Insert(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ReplaceLineItems removes the order's existing line items and inserts
// the given set in a single transaction
func (r *GormOrderRepository) ReplaceLineItems(ctx context.Context, orderID uuid.UUID, items []trade.LineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&trade.LineItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// InsertLineItems appends line items to an order
func (r *GormOrderRepository) InsertLineItems(ctx context.Context, items []trade.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// FindLineItems returns the line items for an order
func (r *GormOrderRepository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	var items []trade.LineItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceRefunds removes the order's existing refunds and inserts the
// given set in a single transaction
func (r *GormOrderRepository) ReplaceRefunds(ctx context.Context, orderID uuid.UUID, refunds []trade.Refund) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&trade.Refund{}).Error; err != nil {
			return err
		}
		if len(refunds) == 0 {
			return nil
		}
		return tx.Create(&refunds).Error
	})
}

// FindRefunds returns the refunds for an order
func (r *GormOrderRepository) FindRefunds(ctx context.Context, orderID uuid.UUID) ([]trade.Refund, error) {
	var refunds []trade.Refund
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}
