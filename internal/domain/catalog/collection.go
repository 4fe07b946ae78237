package catalog

import (
	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// CollectionType distinguishes manually curated collections from
// rule-driven ones.
type CollectionType string

const (
	CollectionTypeManual CollectionType = "manual"
	CollectionTypeAuto   CollectionType = "auto"
)

// CollectionRule is one membership condition of an automatic collection.
// Field and Operator use canonical vocabulary; values the source platform
// uses but we do not recognize pass through unchanged.
type CollectionRule struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Collection is the canonical representation of an imported collection.
type Collection struct {
	shared.StoreEntity
	SourceTag   string           `gorm:"type:varchar(50);not null;index:idx_collections_source,priority:2"`
	ExternalID  string           `gorm:"type:varchar(100);not null;index:idx_collections_source,priority:3"`
	Title       string           `gorm:"type:varchar(500);not null"`
	Description string           `gorm:"type:text"`
	Slug        string           `gorm:"type:varchar(500);index"`
	Type        CollectionType   `gorm:"type:varchar(20);not null;default:'manual'"`
	ProductIDs  []uuid.UUID      `gorm:"serializer:json"`
	Rules       []CollectionRule `gorm:"serializer:json"`
	Disjunctive bool             `gorm:"not null;default:false"`
	ImageURL    string           `gorm:"type:varchar(2000)"`
}

// TableName returns the table name for GORM
func (Collection) TableName() string {
	return "collections"
}

// IsManual returns true for manually curated collections
func (c *Collection) IsManual() bool {
	return c.Type == CollectionTypeManual
}
