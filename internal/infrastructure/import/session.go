package csvimport

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ImportStep is one stage of the guided tabular import flow. Steps
// advance strictly forward; the mapping may be revisited until
// validation starts.
type ImportStep string

const (
	StepUpload     ImportStep = "upload"
	StepMapping    ImportStep = "mapping"
	StepValidation ImportStep = "validation"
	StepOptions    ImportStep = "options"
	StepProcessing ImportStep = "processing"
	StepComplete   ImportStep = "complete"
	StepFailed     ImportStep = "failed"
)

// ImportOptions are the user's processing choices collected after
// validation.
type ImportOptions struct {
	DuplicatePolicy DuplicatePolicy `json:"duplicate_policy"`
	CreateCustomers bool            `json:"create_customers"`
	ResolveProducts bool            `json:"resolve_products"`
}

// ValidationSummary captures the outcome of the validation step.
// Warnings flag recoverable oddities on rows that still import.
type ValidationSummary struct {
	TotalRows  int              `json:"total_rows"`
	ValidRows  int              `json:"valid_rows"`
	ErrorRows  int              `json:"error_rows"`
	Errors     []RowError       `json:"errors,omitempty"`
	Warnings   []RowError       `json:"warnings,omitempty"`
	ErrorCount int              `json:"error_count"`
	Truncated  bool             `json:"errors_truncated"`
	Duplicates []DuplicateGroup `json:"duplicates,omitempty"`
}

// ImportSession tracks one tabular import from upload to completion.
// Sessions live in memory only; a finished session is recorded as an
// import job before it expires.
type ImportSession struct {
	ID       uuid.UUID  `json:"id"`
	StoreID  uuid.UUID  `json:"store_id"`
	FileName string     `json:"file_name"`
	FileSize int64      `json:"file_size"`
	Step     ImportStep `json:"step"`

	Headers  []string     `json:"headers"`
	Platform Platform     `json:"platform"`
	Mapping  FieldMapping `json:"mapping"`
	Preview  [][]string   `json:"preview,omitempty"`

	Options    ImportOptions      `json:"options"`
	Validation *ValidationSummary `json:"validation,omitempty"`

	ProcessedRows int `json:"processed_rows"`
	CreatedCount  int `json:"created_count"`
	SkippedCount  int `json:"skipped_count"`
	ErrorCount    int `json:"error_count"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	rows      []*Row
	validRows []*Row
}

// NewImportSession creates a session in the upload step
func NewImportSession(storeID uuid.UUID, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:        uuid.New(),
		StoreID:   storeID,
		FileName:  fileName,
		FileSize:  fileSize,
		Step:      StepUpload,
		Mapping:   make(FieldMapping),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetRows stores the parsed data rows for later validation and processing
func (s *ImportSession) SetRows(rows []*Row) {
	s.rows = rows
	s.UpdatedAt = time.Now()
}

// Rows returns the parsed data rows
func (s *ImportSession) Rows() []*Row {
	return s.rows
}

// SetValidRows records the rows that passed validation. Only these
// rows are eligible for processing.
func (s *ImportSession) SetValidRows(rows []*Row) {
	s.validRows = rows
	s.UpdatedAt = time.Now()
}

// ValidRows returns the rows that passed validation
func (s *ImportSession) ValidRows() []*Row {
	return s.validRows
}

// AdvanceTo moves the session to the given step
func (s *ImportSession) AdvanceTo(step ImportStep) {
	s.Step = step
	s.UpdatedAt = time.Now()
	if step == StepComplete || step == StepFailed {
		now := time.Now()
		s.CompletedAt = &now
	}
}

// SetMapping replaces the field mapping. The mapping freezes once
// validation starts, so validation results always describe the mapping
// that processing will run under.
func (s *ImportSession) SetMapping(mapping FieldMapping) error {
	switch s.Step {
	case StepValidation, StepOptions, StepProcessing, StepComplete, StepFailed:
		return ErrMappingFrozen
	}
	if err := mapping.Validate(); err != nil {
		return err
	}
	s.Mapping = mapping
	s.UpdatedAt = time.Now()
	return nil
}

// SetValidation records the validation outcome and advances to the
// options step
func (s *ImportSession) SetValidation(summary *ValidationSummary) {
	s.Validation = summary
	s.AdvanceTo(StepOptions)
}

// IsTerminal reports whether the session has finished
func (s *ImportSession) IsTerminal() bool {
	return s.Step == StepComplete || s.Step == StepFailed
}

// SessionStore stores in-flight import sessions
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByStore(storeID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore is an in-memory SessionStore with TTL-based
// expiry. Expired sessions are invisible to Get and reaped by a
// background loop.
type InMemorySessionStore struct {
	sessions map[uuid.UUID]*ImportSession
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore creates a store whose sessions expire after ttl
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go store.startCleanupLoop()
	return store
}

func (s *InMemorySessionStore) startCleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup goroutine
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

// Save saves a session
func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get retrieves a live session by ID, nil when absent or expired
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Since(session.CreatedAt) > s.ttl {
		return nil, nil
	}
	return session, nil
}

// GetByStore retrieves live sessions for a store
func (s *InMemorySessionStore) GetByStore(storeID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ImportSession
	for _, session := range s.sessions {
		if session.StoreID == storeID && time.Since(session.CreatedAt) <= s.ttl {
			result = append(result, session)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Delete deletes a session by ID
func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes expired sessions
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if time.Since(session.CreatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
