package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StoreEntity extends BaseEntity with the owning store.
// Every imported record belongs to exactly one store and all
// repository queries are scoped by StoreID.
type StoreEntity struct {
	BaseEntity
	StoreID uuid.UUID
}

// NewStoreEntity creates a new store-scoped entity with generated ID
func NewStoreEntity(storeID uuid.UUID) StoreEntity {
	return StoreEntity{
		BaseEntity: NewBaseEntity(),
		StoreID:    storeID,
	}
}

// NewImportedEntity creates a store-scoped entity whose ID is the
// deterministic canonical ID for the given external record. Re-importing
// the same external record always produces the same entity ID.
func NewImportedEntity(storeID uuid.UUID, sourceTag, externalID string) StoreEntity {
	e := NewStoreEntity(storeID)
	e.ID = CanonicalID(sourceTag, externalID)
	return e
}
