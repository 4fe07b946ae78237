package importapp

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/domain/trade"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*trade.Order, error) {
	args := m.Called(ctx, storeID, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Upsert(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Insert(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) ReplaceLineItems(ctx context.Context, orderID uuid.UUID, items []trade.LineItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertLineItems(ctx context.Context, items []trade.LineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]trade.LineItem, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]trade.LineItem), args.Error(1)
}

func (m *MockOrderRepository) ReplaceRefunds(ctx context.Context, orderID uuid.UUID, refunds []trade.Refund) error {
	args := m.Called(ctx, orderID, refunds)
	return args.Error(0)
}

func (m *MockOrderRepository) FindRefunds(ctx context.Context, orderID uuid.UUID) ([]trade.Refund, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]trade.Refund), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, storeID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, storeID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Upsert(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) ReplaceAddresses(ctx context.Context, customerID uuid.UUID, addresses []partner.Address) error {
	args := m.Called(ctx, customerID, addresses)
	return args.Error(0)
}

func (m *MockCustomerRepository) FindAddresses(ctx context.Context, customerID uuid.UUID) ([]partner.Address, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]partner.Address), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, storeID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	args := m.Called(ctx, storeID, id)
	return args.Error(0)
}

func (m *MockProductRepository) CountForStore(ctx context.Context, storeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockImportJobRepository is a mock implementation of bulk.ImportJobRepository
type MockImportJobRepository struct {
	mock.Mock
}

func (m *MockImportJobRepository) FindByID(ctx context.Context, storeID, id uuid.UUID) (*bulk.ImportJob, error) {
	args := m.Called(ctx, storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]bulk.ImportJob, error) {
	args := m.Called(ctx, storeID, filter)
	return args.Get(0).([]bulk.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) FindByEntityType(ctx context.Context, storeID uuid.UUID, entityType bulk.EntityType, filter shared.Filter) ([]bulk.ImportJob, error) {
	args := m.Called(ctx, storeID, entityType, filter)
	return args.Get(0).([]bulk.ImportJob), args.Error(1)
}

func (m *MockImportJobRepository) Save(ctx context.Context, job *bulk.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
