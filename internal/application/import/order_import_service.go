package importapp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storekit/backend/internal/domain/bulk"
	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/domain/trade"
	csvimport "github.com/storekit/backend/internal/infrastructure/import"
	"github.com/storekit/backend/internal/infrastructure/progress"
)

// tabularSourceTag marks records created from uploaded files, as
// opposed to records pulled from a platform API
const tabularSourceTag = "csv"

// Config bounds one tabular import
type Config struct {
	BatchSize   int
	MaxErrors   int
	MaxFileSize int64
	PreviewRows int
}

// DefaultConfig returns the default import configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:   10,
		MaxErrors:   100,
		MaxFileSize: 10 * 1024 * 1024,
		PreviewRows: 5,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxErrors <= 0 {
		c.MaxErrors = d.MaxErrors
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = d.MaxFileSize
	}
	if c.PreviewRows <= 0 {
		c.PreviewRows = d.PreviewRows
	}
}

// ProcessResult summarizes one processed file
type ProcessResult struct {
	SessionID   uuid.UUID            `json:"session_id"`
	JobID       uuid.UUID            `json:"job_id"`
	TotalRows   int                  `json:"total_rows"`
	CreatedRows int                  `json:"created_rows"`
	SkippedRows int                  `json:"skipped_rows"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

// OrderImportService drives the guided tabular order import: upload,
// column mapping, validation, options and batched processing.
type OrderImportService struct {
	sessions  csvimport.SessionStore
	orders    trade.OrderRepository
	customers partner.CustomerRepository
	products  catalog.ProductRepository
	jobs      bulk.ImportJobRepository
	sink      progress.Sink
	logger    *zap.Logger
	config    Config
}

// ServiceOption configures an OrderImportService
type ServiceOption func(*OrderImportService)

// WithConfig overrides the import bounds
func WithConfig(config Config) ServiceOption {
	return func(s *OrderImportService) {
		config.applyDefaults()
		s.config = config
	}
}

// WithProgress sets the progress sink
func WithProgress(sink progress.Sink) ServiceOption {
	return func(s *OrderImportService) {
		s.sink = sink
	}
}

// NewOrderImportService creates an OrderImportService
func NewOrderImportService(
	sessions csvimport.SessionStore,
	orders trade.OrderRepository,
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	jobs bulk.ImportJobRepository,
	logger *zap.Logger,
	opts ...ServiceOption,
) *OrderImportService {
	s := &OrderImportService{
		sessions:  sessions,
		orders:    orders,
		customers: customers,
		products:  products,
		jobs:      jobs,
		sink:      progress.NopSink{},
		logger:    logger.Named("tabular-import"),
		config:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload parses an uploaded file, detects its source platform,
// preloads a suggested column mapping and opens a session at the
// mapping step.
func (s *OrderImportService) Upload(ctx context.Context, storeID uuid.UUID, fileName string, data []byte) (*csvimport.ImportSession, error) {
	if int64(len(data)) > s.config.MaxFileSize {
		return nil, csvimport.ErrFileTooLarge
	}

	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrEmptyFile
	}

	session := csvimport.NewImportSession(storeID, fileName, int64(len(data)))
	session.Headers = parser.Headers()
	session.Platform = csvimport.DetectPlatform(session.Headers)
	session.SetRows(rows)
	if err := session.SetMapping(csvimport.SuggestMapping(session.Headers)); err != nil {
		return nil, err
	}
	session.Preview = previewRows(session.Headers, rows, s.config.PreviewRows)
	session.AdvanceTo(csvimport.StepMapping)

	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.String("session_id", session.ID.String()),
		zap.String("store_id", storeID.String()),
		zap.String("platform", string(session.Platform)),
		zap.Int("rows", len(rows)),
	)
	return session, nil
}

// SetMapping replaces the session's column mapping
func (s *OrderImportService) SetMapping(ctx context.Context, sessionID uuid.UUID, mapping csvimport.FieldMapping) (*csvimport.ImportSession, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.SetMapping(mapping); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Validate runs the fixed per-field rules and in-file duplicate
// detection over every row, then moves the session to the options step.
func (s *OrderImportService) Validate(ctx context.Context, sessionID uuid.UUID) (*csvimport.ValidationSummary, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mapping.ColumnFor(csvimport.FieldOrderNumber) == "" {
		return nil, shared.NewDomainError("MAPPING_INCOMPLETE", "An order number column must be mapped before validation")
	}
	session.AdvanceTo(csvimport.StepValidation)

	errs := csvimport.NewErrorCollection(s.config.MaxErrors)
	validator := csvimport.NewRowValidator(session.Mapping, errs)

	rows := session.Rows()
	valid := make([]*csvimport.Row, 0, len(rows))
	for _, row := range rows {
		if validator.Validate(row) {
			valid = append(valid, row)
		}
	}

	summary := &csvimport.ValidationSummary{
		TotalRows:  len(rows),
		ValidRows:  len(valid),
		ErrorRows:  len(rows) - len(valid),
		Errors:     errs.Errors(),
		Warnings:   validator.Warnings(),
		ErrorCount: errs.TotalCount(),
		Truncated:  errs.IsTruncated(),
		Duplicates: csvimport.FindDuplicates(rows, session.Mapping),
	}
	session.SetValidRows(valid)
	session.SetValidation(summary)

	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}
	return summary, nil
}

// Process imports the rows that passed validation, in sequential
// batches. Rows inside a batch import concurrently; a row that fails is
// recorded and processing moves on. Rows whose order number already
// exists are skipped regardless of the duplicate policy; update and
// merge are accepted but currently behave as skip.
func (s *OrderImportService) Process(ctx context.Context, sessionID uuid.UUID, options csvimport.ImportOptions) (*ProcessResult, error) {
	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Step != csvimport.StepOptions {
		return nil, shared.ErrInvalidState
	}
	if options.DuplicatePolicy == "" {
		options.DuplicatePolicy = csvimport.DuplicateSkip
	}
	if !options.DuplicatePolicy.Valid() {
		return nil, shared.NewDomainError("INVALID_DUPLICATE_POLICY", "Unknown duplicate policy")
	}
	session.Options = options
	session.AdvanceTo(csvimport.StepProcessing)
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	job, err := bulk.NewImportJob(session.StoreID, bulk.EntityOrders)
	if err != nil {
		return nil, err
	}
	if err := job.Start(); err != nil {
		return nil, err
	}
	job.SetTotalCount(len(session.ValidRows()))
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	run := &processRun{
		service: s,
		session: session,
		options: options,
		job:     job,
		errs:    csvimport.NewErrorCollection(s.config.MaxErrors),
	}
	run.execute(ctx)

	if err := job.Complete(); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, err
	}

	session.ProcessedRows = run.processed
	session.CreatedCount = run.created
	session.SkippedCount = run.skipped
	session.ErrorCount = run.errs.TotalCount()
	session.AdvanceTo(csvimport.StepComplete)
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	s.logger.Info("tabular import finished",
		zap.String("session_id", session.ID.String()),
		zap.Int("created", run.created),
		zap.Int("skipped", run.skipped),
		zap.Int("errors", run.errs.TotalCount()),
	)

	return &ProcessResult{
		SessionID:   session.ID,
		JobID:       job.ID,
		TotalRows:   len(session.ValidRows()),
		CreatedRows: run.created,
		SkippedRows: run.skipped,
		ErrorRows:   run.errorRows,
		Errors:      run.errs.Errors(),
		IsTruncated: run.errs.IsTruncated(),
		TotalErrors: run.errs.TotalCount(),
	}, nil
}

// GetSession returns a live session
func (s *OrderImportService) GetSession(ctx context.Context, sessionID uuid.UUID) (*csvimport.ImportSession, error) {
	return s.getSession(sessionID)
}

func (s *OrderImportService) getSession(sessionID uuid.UUID) (*csvimport.ImportSession, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// processRun holds the mutable state of one processing pass. Batch
// members run concurrently, so all counters go through the mutex.
type processRun struct {
	service *OrderImportService
	session *csvimport.ImportSession
	options csvimport.ImportOptions
	job     *bulk.ImportJob

	mu        sync.Mutex
	errs      *csvimport.ErrorCollection
	total     int
	processed int
	created   int
	skipped   int
	errorRows int
}

// execute walks the rows that passed validation; rows with validation
// errors never reach the repositories.
func (r *processRun) execute(ctx context.Context) {
	rows := r.session.ValidRows()
	r.total = len(rows)
	batchSize := r.service.config.BatchSize

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, row := range rows[start:end] {
			row := row
			g.Go(func() error {
				r.processRow(gctx, row)
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (r *processRun) processRow(ctx context.Context, row *csvimport.Row) {
	outcome, rowErr := r.service.importRow(ctx, r.session, r.options, row)

	r.mu.Lock()
	r.processed++
	switch {
	case rowErr != nil:
		r.errorRows++
		r.errs.Add(*rowErr)
		r.job.RecordFailure(rowErr.Value, rowErr.Message)
	case outcome == outcomeSkipped:
		// skips are neither imported nor failed on the durable job
		r.skipped++
	default:
		r.created++
		r.job.RecordImported()
	}
	processed, created, skipped, failed := r.processed, r.created, r.skipped, r.errorRows
	r.mu.Unlock()

	r.service.sink.Publish(ctx, progress.Snapshot{
		StoreID: r.session.StoreID,
		Phase:   "tabular",
		Current: processed,
		Total:   r.total,
		Percent: float64(processed) / float64(r.total) * 100,
		Counts: map[string]int{
			"created": created,
			"skipped": skipped,
			"errors":  failed,
		},
	})
}

type rowOutcome int

const (
	outcomeCreated rowOutcome = iota
	outcomeSkipped
)

// importRow imports one validated row as an order. The required fields
// are re-parsed from the raw row values; a failure here is recorded
// against the row and the run carries on.
func (s *OrderImportService) importRow(ctx context.Context, session *csvimport.ImportSession, options csvimport.ImportOptions, row *csvimport.Row) (rowOutcome, *csvimport.RowError) {
	mapping := session.Mapping

	orderNumber := strings.TrimSpace(mapping.Value(row, csvimport.FieldOrderNumber))
	if orderNumber == "" {
		e := csvimport.NewRowError(row.LineNumber, csvimport.FieldOrderNumber, csvimport.ErrCodeRequiredField, "order number is required")
		return outcomeSkipped, &e
	}

	totalRaw := strings.TrimSpace(mapping.Value(row, csvimport.FieldTotalAmount))
	total, err := decimal.NewFromString(totalRaw)
	if err != nil {
		e := csvimport.NewRowErrorWithValue(row.LineNumber, csvimport.FieldTotalAmount, csvimport.ErrCodeInvalidType, "expected decimal number", totalRaw)
		return outcomeSkipped, &e
	}

	existing, err := s.orders.FindByOrderNumber(ctx, session.StoreID, orderNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		e := csvimport.NewRowErrorWithValue(row.LineNumber, "", csvimport.ErrCodeProcessing, err.Error(), orderNumber)
		return outcomeSkipped, &e
	}
	if existing != nil {
		// update and merge intentionally fall through to skip
		return outcomeSkipped, nil
	}

	order := &trade.Order{
		StoreEntity: shared.NewStoreEntity(session.StoreID),
		SourceTag:   tabularSourceTag,
		ExternalID:  orderNumber,
		OrderNumber: orderNumber,
		TotalAmount: total,
	}

	if currency := strings.ToUpper(strings.TrimSpace(mapping.Value(row, csvimport.FieldCurrency))); currency != "" {
		order.Currency = currency
	} else {
		order.Currency = "USD"
	}

	if raw := strings.TrimSpace(mapping.Value(row, csvimport.FieldFinancialStatus)); raw != "" {
		order.FinancialStatus = tabularFinancialStatus(raw)
	} else {
		order.FinancialStatus = trade.FinancialStatusPending
	}
	order.FulfillmentStatus = trade.FulfillmentStatusUnfulfilled

	if raw := strings.TrimSpace(mapping.Value(row, csvimport.FieldPlacedAt)); raw != "" {
		if placed, ok := csvimport.ParsePlacedAt(raw); ok {
			order.PlacedAt = &placed
		}
	}

	email := strings.ToLower(strings.TrimSpace(mapping.Value(row, csvimport.FieldEmail)))
	order.Email = email
	if options.CreateCustomers && email != "" {
		customerID, err := s.findOrCreateCustomer(ctx, session.StoreID, email, mapping.Value(row, csvimport.FieldCustomerName))
		if err != nil {
			e := csvimport.NewRowErrorWithValue(row.LineNumber, csvimport.FieldEmail, csvimport.ErrCodeProcessing, err.Error(), email)
			return outcomeSkipped, &e
		}
		order.CustomerID = &customerID
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		e := csvimport.NewRowErrorWithValue(row.LineNumber, "", csvimport.ErrCodeProcessing, err.Error(), orderNumber)
		return outcomeSkipped, &e
	}

	if item := s.buildLineItem(ctx, session, options, row, order); item != nil {
		if err := s.orders.InsertLineItems(ctx, []trade.LineItem{*item}); err != nil {
			e := csvimport.NewRowErrorWithValue(row.LineNumber, "", csvimport.ErrCodeProcessing, err.Error(), orderNumber)
			return outcomeSkipped, &e
		}
	}

	return outcomeCreated, nil
}

// buildLineItem assembles the row's line item when one is mapped.
// SKU resolution failures degrade to an unlinked line item.
func (s *OrderImportService) buildLineItem(ctx context.Context, session *csvimport.ImportSession, options csvimport.ImportOptions, row *csvimport.Row, order *trade.Order) *trade.LineItem {
	mapping := session.Mapping
	title := strings.TrimSpace(mapping.Value(row, csvimport.FieldLineItemName))
	sku := strings.TrimSpace(mapping.Value(row, csvimport.FieldLineItemSKU))
	if title == "" && sku == "" {
		return nil
	}
	if title == "" {
		title = sku
	}

	item := &trade.LineItem{
		StoreEntity: shared.NewStoreEntity(session.StoreID),
		OrderID:     order.ID,
		Title:       title,
		SKU:         sku,
		Quantity:    1,
	}
	if raw := strings.TrimSpace(mapping.Value(row, csvimport.FieldLineItemQty)); raw != "" {
		if qty, err := decimal.NewFromString(raw); err == nil && qty.IsPositive() {
			item.Quantity = int(qty.IntPart())
		}
	}
	if raw := strings.TrimSpace(mapping.Value(row, csvimport.FieldLineItemPrice)); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil && !price.IsNegative() {
			item.UnitPrice = price
		}
	}

	if options.ResolveProducts && sku != "" {
		product, err := s.products.FindBySKU(ctx, session.StoreID, sku)
		if err == nil && product != nil {
			item.ProductID = &product.ID
		}
	}
	return item
}

// findOrCreateCustomer returns the store's customer with the given
// email, creating one when none exists
func (s *OrderImportService) findOrCreateCustomer(ctx context.Context, storeID uuid.UUID, email, name string) (uuid.UUID, error) {
	existing, err := s.customers.FindByEmail(ctx, storeID, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	first, last := splitName(name)
	customer := &partner.Customer{
		StoreEntity: shared.NewStoreEntity(storeID),
		SourceTag:   tabularSourceTag,
		ExternalID:  email,
		Email:       email,
		FirstName:   first,
		LastName:    last,
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return uuid.Nil, err
	}
	return customer.ID, nil
}

var tabularFinancialStatuses = map[string]trade.FinancialStatus{
	"paid":               trade.FinancialStatusPaid,
	"pending":            trade.FinancialStatusPending,
	"unpaid":             trade.FinancialStatusPending,
	"authorized":         trade.FinancialStatusAuthorized,
	"refunded":           trade.FinancialStatusRefunded,
	"partially_refunded": trade.FinancialStatusPartiallyRefunded,
	"partially refunded": trade.FinancialStatusPartiallyRefunded,
	"voided":             trade.FinancialStatusVoided,
}

func tabularFinancialStatus(raw string) trade.FinancialStatus {
	if status, ok := tabularFinancialStatuses[strings.ToLower(raw)]; ok {
		return status
	}
	return trade.FinancialStatusPending
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func previewRows(headers []string, rows []*csvimport.Row, limit int) [][]string {
	if limit > len(rows) {
		limit = len(rows)
	}
	preview := make([][]string, 0, limit)
	for _, row := range rows[:limit] {
		values := make([]string, len(headers))
		for i, h := range headers {
			values[i] = row.Get(h)
		}
		preview = append(preview, values)
	}
	return preview
}
