package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	importapp "github.com/storekit/backend/internal/application/import"
	csvimport "github.com/storekit/backend/internal/infrastructure/import"
	"github.com/storekit/backend/internal/interfaces/http/dto"
)

// csvContentTypes are the accepted upload content types. Browsers are
// inconsistent about what they send for .csv files.
var csvContentTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.ms-excel": true,
}

// OrderImportHandler drives the guided tabular order import over HTTP
type OrderImportHandler struct {
	BaseHandler
	service *importapp.OrderImportService
}

// NewOrderImportHandler creates an OrderImportHandler
func NewOrderImportHandler(service *importapp.OrderImportService) *OrderImportHandler {
	return &OrderImportHandler{service: service}
}

// Upload accepts a tabular order file, detects its source platform and
// opens an import session at the mapping step
func (h *OrderImportHandler) Upload(c *gin.Context) {
	storeID, err := getStoreID(c)
	if err != nil {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if !csvContentTypes[header.Header.Get("Content-Type")] {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.InternalError(c, "failed to read uploaded file")
		return
	}

	session, err := h.service.Upload(c.Request.Context(), storeID, header.Filename, data)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	h.Created(c, dto.NewImportSessionResponse(session))
}

// GetSession returns the current state of an import session
func (h *OrderImportHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	h.Success(c, dto.NewImportSessionResponse(session))
}

// SetMapping replaces the session's column mapping. Rejected once
// processing has started.
func (h *OrderImportHandler) SetMapping(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.SetMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	session, err := h.service.SetMapping(c.Request.Context(), sessionID, csvimport.FieldMapping(req.Mapping))
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	h.Success(c, dto.NewImportSessionResponse(session))
}

// Validate runs row validation under the current mapping and reports
// per-row errors and duplicate groups
func (h *OrderImportHandler) Validate(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	summary, err := h.service.Validate(c.Request.Context(), sessionID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	h.Success(c, summary)
}

// Process runs the import with the chosen options and returns the
// final counts
func (h *OrderImportHandler) Process(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	options := csvimport.ImportOptions{
		DuplicatePolicy: csvimport.DuplicatePolicy(req.DuplicatePolicy),
		CreateCustomers: req.CreateCustomers,
		ResolveProducts: req.ResolveProducts,
	}

	result, err := h.service.Process(c.Request.Context(), sessionID, options)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	h.Success(c, result)
}

func (h *OrderImportHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// handleImportError maps file and session errors onto HTTP responses
func (h *OrderImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, csvimport.ErrFileTooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "file exceeds the maximum allowed size")
	case errors.Is(err, csvimport.ErrEmptyFile):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeFileEmpty, "file contains no data rows")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeFileEncoding, "file must be UTF-8 encoded")
	case errors.Is(err, csvimport.ErrMissingHeader):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "file is missing its header row")
	case errors.Is(err, csvimport.ErrMappingFrozen):
		h.Error(c, http.StatusConflict, dto.ErrCodeMappingFrozen, "mapping can no longer change once processing has started")
	default:
		h.HandleError(c, err)
	}
}

// RegisterRoutes registers the tabular import routes
func (h *OrderImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/import/orders")
	{
		imports.POST("/upload", h.Upload)
		imports.GET("/sessions/:id", h.GetSession)
		imports.PUT("/sessions/:id/mapping", h.SetMapping)
		imports.POST("/sessions/:id/validate", h.Validate)
		imports.POST("/sessions/:id/process", h.Process)
	}
}
