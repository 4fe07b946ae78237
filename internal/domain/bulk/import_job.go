package bulk

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// EntityType identifies which kind of records an import job covers
type EntityType string

const (
	EntityProducts    EntityType = "products"
	EntityCollections EntityType = "collections"
	EntityCustomers   EntityType = "customers"
	EntityOrders      EntityType = "orders"
)

// IsValid checks if the entity type is valid
func (e EntityType) IsValid() bool {
	switch e {
	case EntityProducts, EntityCollections, EntityCustomers, EntityOrders:
		return true
	}
	return false
}

// MigrationOrder is the sequence entity types are imported in.
// Collections and orders reference products and customers by ID, so
// their referents are imported first.
func MigrationOrder() []EntityType {
	return []EntityType{EntityProducts, EntityCollections, EntityCustomers, EntityOrders}
}

// JobStatus is the lifecycle state of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal returns true if the status is a terminal state
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ItemError records the failure of a single item inside a job.
// A job completes even when individual items fail; the errors are kept
// for the run summary.
type ItemError struct {
	ItemID  string `json:"item_id"`
	Message string `json:"message"`
}

// maxJobErrors caps the number of discrete item errors kept per job.
// The total failed count is tracked separately.
const maxJobErrors = 100

// ImportJob tracks one entity-type import run against a store.
// It is owned exclusively by the orchestrator and written through the
// repository for resumability and audit.
type ImportJob struct {
	shared.StoreEntity
	EntityType    EntityType `gorm:"type:varchar(20);not null;index"`
	Status        JobStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalCount    *int       `gorm:"default:null"`
	ImportedCount int        `gorm:"not null;default:0"`
	FailedCount   int        `gorm:"not null;default:0"`
	ErrorDetails  string     `gorm:"type:jsonb;default:'[]'"`
	StartedAt     *time.Time `gorm:"type:timestamptz"`
	CompletedAt   *time.Time `gorm:"type:timestamptz"`

	errors []ItemError `gorm:"-"`
}

// TableName returns the table name for GORM
func (ImportJob) TableName() string {
	return "import_jobs"
}

// NewImportJob creates a pending job for one entity type
func NewImportJob(storeID uuid.UUID, entityType EntityType) (*ImportJob, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unsupported import entity type")
	}
	return &ImportJob{
		StoreEntity:  shared.NewStoreEntity(storeID),
		EntityType:   entityType,
		Status:       JobStatusPending,
		ErrorDetails: "[]",
	}, nil
}

// Start transitions the job to in_progress
func (j *ImportJob) Start() error {
	if j.Status != JobStatusPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	j.Status = JobStatusInProgress
	j.StartedAt = &now
	j.UpdatedAt = now
	return nil
}

// RecordImported counts one successfully imported item
func (j *ImportJob) RecordImported() {
	j.ImportedCount++
	j.UpdatedAt = time.Now()
}

// RecordFailure counts one failed item and keeps its error, up to the
// per-job error cap
func (j *ImportJob) RecordFailure(itemID, message string) {
	j.FailedCount++
	if len(j.errors) < maxJobErrors {
		j.errors = append(j.errors, ItemError{ItemID: itemID, Message: message})
		j.syncErrorDetails()
	}
	j.UpdatedAt = time.Now()
}

// SetTotalCount records the total item count once it is known
func (j *ImportJob) SetTotalCount(total int) {
	j.TotalCount = &total
	j.UpdatedAt = time.Now()
}

// Complete finalizes the job. A job is completed when the run finished,
// regardless of how many individual items failed.
func (j *ImportJob) Complete() error {
	if j.Status != JobStatusInProgress {
		return shared.ErrInvalidState
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
	return nil
}

// Fail finalizes the job after a run-level error such as a pagination
// failure
func (j *ImportJob) Fail(message string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.UpdatedAt = now
	if len(j.errors) < maxJobErrors {
		j.errors = append(j.errors, ItemError{Message: message})
		j.syncErrorDetails()
	}
}

// Errors returns the recorded item errors
func (j *ImportJob) Errors() []ItemError {
	return j.errors
}

// IsErrorListTruncated reports whether item errors were dropped because
// the per-job cap was reached
func (j *ImportJob) IsErrorListTruncated() bool {
	return j.FailedCount > maxJobErrors
}

func (j *ImportJob) syncErrorDetails() {
	data, err := json.Marshal(j.errors)
	if err != nil {
		return
	}
	j.ErrorDetails = string(data)
}

// LoadErrorDetails restores the error list from the persisted JSON form
func (j *ImportJob) LoadErrorDetails() error {
	if j.ErrorDetails == "" {
		j.errors = nil
		return nil
	}
	return json.Unmarshal([]byte(j.ErrorDetails), &j.errors)
}
