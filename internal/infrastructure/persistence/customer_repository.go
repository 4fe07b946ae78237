package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/shared"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID within a store
func (r *GormCustomerRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds a customer by email within a store
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, storeID uuid.UUID, email string) (*partner.Customer, error) {
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND email = ?", storeID, strings.ToLower(email)).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAllForStore finds all customers for a store
func (r *GormCustomerRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Upsert inserts or overwrites a customer keyed by its canonical ID
func (r *GormCustomerRepository) Upsert(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Clauses(upsertAll()).Create(customer).Error
}

// Save creates a new customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// ReplaceAddresses removes the customer's existing addresses and
// inserts the given set in a single transaction
func (r *GormCustomerRepository) ReplaceAddresses(ctx context.Context, customerID uuid.UUID, addresses []partner.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&partner.Address{}).Error; err != nil {
			return err
		}
		if len(addresses) == 0 {
			return nil
		}
		return tx.Create(&addresses).Error
	})
}

// FindAddresses returns the addresses for a customer
func (r *GormCustomerRepository) FindAddresses(ctx context.Context, customerID uuid.UUID) ([]partner.Address, error) {
	var addresses []partner.Address
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}
