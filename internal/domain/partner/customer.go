package partner

import (
	"strings"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// Customer is the canonical representation of an imported customer.
type Customer struct {
	shared.StoreEntity
	SourceTag        string   `gorm:"type:varchar(50);not null;index:idx_customers_source,priority:2"`
	ExternalID       string   `gorm:"type:varchar(100);not null;index:idx_customers_source,priority:3"`
	Email            string   `gorm:"type:varchar(320);index"`
	FirstName        string   `gorm:"type:varchar(200)"`
	LastName         string   `gorm:"type:varchar(200)"`
	Phone            string   `gorm:"type:varchar(50)"`
	AcceptsMarketing bool     `gorm:"not null;default:false"`
	TaxExempt        bool     `gorm:"not null;default:false"`
	Tags             []string `gorm:"serializer:json"`
	Note             string   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Address is a postal address belonging to a customer. Addresses are
// stored separately and keyed by the owning customer's canonical ID.
type Address struct {
	shared.StoreEntity
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalID string    `gorm:"type:varchar(100)"`
	FirstName  string    `gorm:"type:varchar(200)"`
	LastName   string    `gorm:"type:varchar(200)"`
	Company    string    `gorm:"type:varchar(200)"`
	Address1   string    `gorm:"type:varchar(500)"`
	Address2   string    `gorm:"type:varchar(500)"`
	City       string    `gorm:"type:varchar(200)"`
	Province   string    `gorm:"type:varchar(200)"`
	Country    string    `gorm:"type:varchar(200)"`
	Zip        string    `gorm:"type:varchar(50)"`
	Phone      string    `gorm:"type:varchar(50)"`
	IsDefault  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Address) TableName() string {
	return "customer_addresses"
}
