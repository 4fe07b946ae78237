package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/backend/internal/domain/shared"
)

// FinancialStatus is the canonical payment state of an order
type FinancialStatus string

const (
	FinancialStatusPending           FinancialStatus = "pending"
	FinancialStatusAuthorized        FinancialStatus = "authorized"
	FinancialStatusPaid              FinancialStatus = "paid"
	FinancialStatusPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialStatusRefunded          FinancialStatus = "refunded"
	FinancialStatusPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialStatusVoided            FinancialStatus = "voided"
)

// FulfillmentStatus is the canonical fulfillment state of an order
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
	FulfillmentStatusRestocked   FulfillmentStatus = "restocked"
)

// Order is the canonical representation of an imported order.
type Order struct {
	shared.StoreEntity
	SourceTag         string            `gorm:"type:varchar(50);not null;index:idx_orders_source,priority:2"`
	ExternalID        string            `gorm:"type:varchar(100);not null;index:idx_orders_source,priority:3"`
	OrderNumber       string            `gorm:"type:varchar(100);not null;index"`
	CustomerID        *uuid.UUID        `gorm:"type:uuid;index"`
	Email             string            `gorm:"type:varchar(320)"`
	Currency          string            `gorm:"type:varchar(3);not null;default:'USD'"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalAmount    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	FinancialStatus   FinancialStatus   `gorm:"type:varchar(30);not null;default:'pending'"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(30);not null;default:'unfulfilled'"`
	Note              string            `gorm:"type:text"`
	PlacedAt          *time.Time        `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// LineItem is one purchased line of an order, keyed by the parent
// order's canonical ID.
type LineItem struct {
	shared.StoreEntity
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExternalID string          `gorm:"type:varchar(100)"`
	ProductID  *uuid.UUID      `gorm:"type:uuid;index"`
	Title      string          `gorm:"type:varchar(500);not null"`
	SKU        string          `gorm:"type:varchar(200);index"`
	Quantity   int             `gorm:"not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "order_line_items"
}

// Total returns the line total (quantity times unit price)
func (li *LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Refund records money returned against an order. Amount is the sum of
// the refund's transaction amounts on the source platform.
type Refund struct {
	shared.StoreEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExternalID  string          `gorm:"type:varchar(100)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Note        string          `gorm:"type:text"`
	ProcessedAt *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "order_refunds"
}
