package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storekit/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Variant represents one sellable variation of a product.
// Variants are embedded in the product record; they have no identity
// outside their parent.
type Variant struct {
	ExternalID        string          `json:"external_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku"`
	Price             decimal.Decimal `json:"price"`
	CompareAtPrice    decimal.Decimal `json:"compare_at_price"`
	Position          int             `json:"position"`
	InventoryQuantity int             `json:"inventory_quantity"`
	Options           []string        `json:"options,omitempty"`
}

// Product is the canonical representation of an imported product.
// Its ID is derived from (SourceTag, ExternalID), so re-importing the
// same external product upserts the same row.
type Product struct {
	shared.StoreEntity
	SourceTag   string          `gorm:"type:varchar(50);not null;index:idx_products_source,priority:2"`
	ExternalID  string          `gorm:"type:varchar(100);not null;index:idx_products_source,priority:3"`
	Title       string          `gorm:"type:varchar(500);not null"`
	Description string          `gorm:"type:text"`
	Slug        string          `gorm:"type:varchar(500);index"`
	Vendor      string          `gorm:"type:varchar(200)"`
	ProductType string          `gorm:"type:varchar(200)"`
	Tags        []string        `gorm:"serializer:json"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HasVariants bool            `gorm:"not null;default:false"`
	Variants    []Variant       `gorm:"serializer:json"`
	Images      []string        `gorm:"serializer:json"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// PrimaryVariant returns the first variant, or nil if there are none
func (p *Product) PrimaryVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// VariantBySKU returns the variant with the given SKU, or nil
func (p *Product) VariantBySKU(sku string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}

// ReplaceImageURLs substitutes image URLs according to the rewrite map.
// It returns true if any URL changed.
func (p *Product) ReplaceImageURLs(rewrites map[string]string) bool {
	changed := false
	for i, u := range p.Images {
		if nu, ok := rewrites[u]; ok && nu != u {
			p.Images[i] = nu
			changed = true
		}
	}
	if changed {
		p.UpdatedAt = time.Now()
	}
	return changed
}
