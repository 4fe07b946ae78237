package dto

import (
	"time"

	"github.com/samber/lo"

	migrationapp "github.com/storekit/backend/internal/application/migration"
	"github.com/storekit/backend/internal/domain/bulk"
	csvimport "github.com/storekit/backend/internal/infrastructure/import"
)

// SetMappingRequest replaces the column mapping of an import session
type SetMappingRequest struct {
	Mapping map[string]string `json:"mapping" binding:"required"`
}

// ProcessRequest carries the processing options chosen after validation
type ProcessRequest struct {
	DuplicatePolicy string `json:"duplicate_policy" binding:"omitempty,oneof=skip update merge"`
	CreateCustomers bool   `json:"create_customers"`
	ResolveProducts bool   `json:"resolve_products"`
}

// ImportSessionResponse is the wire form of a tabular import session
type ImportSessionResponse struct {
	ID            string                       `json:"id"`
	StoreID       string                       `json:"store_id"`
	FileName      string                       `json:"file_name"`
	Step          string                       `json:"step"`
	Platform      string                       `json:"platform"`
	Headers       []string                     `json:"headers"`
	Mapping       map[string]string            `json:"mapping"`
	Preview       [][]string                   `json:"preview,omitempty"`
	Validation    *csvimport.ValidationSummary `json:"validation,omitempty"`
	ProcessedRows int                          `json:"processed_rows"`
	CreatedCount  int                          `json:"created_count"`
	SkippedCount  int                          `json:"skipped_count"`
	ErrorCount    int                          `json:"error_count"`
	CreatedAt     time.Time                    `json:"created_at"`
	CompletedAt   *time.Time                   `json:"completed_at,omitempty"`
}

// NewImportSessionResponse converts a session to its wire form
func NewImportSessionResponse(session *csvimport.ImportSession) ImportSessionResponse {
	return ImportSessionResponse{
		ID:            session.ID.String(),
		StoreID:       session.StoreID.String(),
		FileName:      session.FileName,
		Step:          string(session.Step),
		Platform:      string(session.Platform),
		Headers:       session.Headers,
		Mapping:       session.Mapping,
		Preview:       session.Preview,
		Validation:    session.Validation,
		ProcessedRows: session.ProcessedRows,
		CreatedCount:  session.CreatedCount,
		SkippedCount:  session.SkippedCount,
		ErrorCount:    session.ErrorCount,
		CreatedAt:     session.CreatedAt,
		CompletedAt:   session.CompletedAt,
	}
}

// ImportJobResponse is the wire form of one entity import job
type ImportJobResponse struct {
	ID              string           `json:"id"`
	StoreID         string           `json:"store_id"`
	EntityType      string           `json:"entity_type"`
	Status          string           `json:"status"`
	TotalCount      *int             `json:"total_count,omitempty"`
	ImportedCount   int              `json:"imported_count"`
	FailedCount     int              `json:"failed_count"`
	Errors          []bulk.ItemError `json:"errors,omitempty"`
	ErrorsTruncated bool             `json:"errors_truncated,omitempty"`
	StartedAt       *time.Time       `json:"started_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// NewImportJobResponse converts a job to its wire form
func NewImportJobResponse(job *bulk.ImportJob) ImportJobResponse {
	return ImportJobResponse{
		ID:              job.ID.String(),
		StoreID:         job.StoreID.String(),
		EntityType:      string(job.EntityType),
		Status:          string(job.Status),
		TotalCount:      job.TotalCount,
		ImportedCount:   job.ImportedCount,
		FailedCount:     job.FailedCount,
		Errors:          job.Errors(),
		ErrorsTruncated: job.IsErrorListTruncated(),
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
		CreatedAt:       job.CreatedAt,
	}
}

// NewImportJobResponses converts a list of jobs to wire form
func NewImportJobResponses(jobs []*bulk.ImportJob) []ImportJobResponse {
	return lo.Map(jobs, func(job *bulk.ImportJob, _ int) ImportJobResponse {
		return NewImportJobResponse(job)
	})
}

// MigrationRunResponse is the wire form of one full migration run
type MigrationRunResponse struct {
	RunID  string                         `json:"run_id"`
	Failed bool                           `json:"failed"`
	Jobs   []ImportJobResponse            `json:"jobs"`
	Assets *migrationapp.RelocationResult `json:"assets,omitempty"`
}

// NewMigrationRunResponse converts a migration result to its wire form
func NewMigrationRunResponse(result *migrationapp.MigrationResult) MigrationRunResponse {
	return MigrationRunResponse{
		RunID:  result.RunID.String(),
		Failed: result.Failed(),
		Jobs:   NewImportJobResponses(result.Jobs),
		Assets: result.Assets,
	}
}
