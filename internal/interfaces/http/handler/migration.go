package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	migrationapp "github.com/storekit/backend/internal/application/migration"
	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/interfaces/http/dto"
)

// MigrationHandler exposes the bulk migration run and its job history
type MigrationHandler struct {
	BaseHandler
	service *migrationapp.MigrationService
	jobs    bulk.ImportJobRepository
}

// NewMigrationHandler creates a MigrationHandler
func NewMigrationHandler(service *migrationapp.MigrationService, jobs bulk.ImportJobRepository) *MigrationHandler {
	return &MigrationHandler{service: service, jobs: jobs}
}

// Run migrates every supported entity type from the source platform
// into the store. The request blocks until the run finishes; progress
// is published on the progress channel along the way.
func (h *MigrationHandler) Run(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	result, err := h.service.Run(c.Request.Context(), storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewMigrationRunResponse(result))
}

// RunEntity migrates a single entity type
func (h *MigrationHandler) RunEntity(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	entityType := bulk.EntityType(c.Param("entity"))
	if !entityType.IsValid() {
		h.BadRequest(c, "Unsupported entity type")
		return
	}

	job, err := h.service.RunEntity(c.Request.Context(), storeID, entityType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewImportJobResponse(job))
}

// ListJobs returns the store's import jobs, newest first, optionally
// filtered by entity type
func (h *MigrationHandler) ListJobs(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize}

	var jobs []bulk.ImportJob
	if entity := c.Query("entity_type"); entity != "" {
		entityType := bulk.EntityType(entity)
		if !entityType.IsValid() {
			h.BadRequest(c, "Unsupported entity type")
			return
		}
		jobs, err = h.jobs.FindByEntityType(c.Request.Context(), storeID, entityType, filter)
	} else {
		jobs, err = h.jobs.FindAllForStore(c.Request.Context(), storeID, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := lo.Map(jobs, func(job bulk.ImportJob, _ int) dto.ImportJobResponse {
		return dto.NewImportJobResponse(&job)
	})
	h.Success(c, responses)
}

// GetJob returns one import job with its recorded item errors
func (h *MigrationHandler) GetJob(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.jobs.FindByID(c.Request.Context(), storeID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewImportJobResponse(job))
}

// RegisterRoutes registers the migration routes
func (h *MigrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	migration := rg.Group("/migration")
	{
		migration.POST("/run", h.Run)
		migration.POST("/run/:entity", h.RunEntity)
		migration.GET("/jobs", h.ListJobs)
		migration.GET("/jobs/:id", h.GetJob)
	}
}
