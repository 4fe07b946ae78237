package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Import error codes
const (
	ErrCodeInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeFileTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeMissingHeader   = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType     = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeInvalidFormat   = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeInvalidRange    = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeUnknownValue    = "ERR_IMPORT_UNKNOWN_VALUE"
	ErrCodeProcessing      = "ERR_IMPORT_PROCESSING"
)

// Common import errors
var (
	// ErrEmptyFile is returned when the uploaded file is empty
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrFileTooLarge is returned when the file exceeds the size limit
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")

	// ErrMappingFrozen is returned when the field mapping is edited
	// after validation has started
	ErrMappingFrozen = errors.New("field mapping is frozen once validation starts")
)

// RowError represents an error in a specific row. Row numbers are
// 1-based and match the uploaded file, header included.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d, field '%s': %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, field, code, message string) RowError {
	return RowError{Row: row, Field: field, Code: code, Message: message}
}

// NewRowErrorWithValue creates a new RowError carrying the offending value
func NewRowErrorWithValue(row int, field, code, message, value string) RowError {
	return RowError{Row: row, Field: field, Code: code, Message: message, Value: value}
}

// ErrorCollection accumulates row errors up to a cap while counting
// every error seen
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError adds a required field error
func (ec *ErrorCollection) AddRequiredError(row int, field string) {
	ec.Add(NewRowError(row, field, ErrCodeRequiredField, fmt.Sprintf("field '%s' is required", field)))
}

// AddTypeError adds a type validation error
func (ec *ErrorCollection) AddTypeError(row int, field, expected, value string) {
	ec.Add(NewRowErrorWithValue(row, field, ErrCodeInvalidType,
		fmt.Sprintf("expected %s", expected), value))
}

// AddFormatError adds a format validation error
func (ec *ErrorCollection) AddFormatError(row int, field, expected, value string) {
	ec.Add(NewRowErrorWithValue(row, field, ErrCodeInvalidFormat,
		fmt.Sprintf("invalid format, expected %s", expected), value))
}

// AddRangeError adds a range validation error
func (ec *ErrorCollection) AddRangeError(row int, field, constraint, value string) {
	ec.Add(NewRowErrorWithValue(row, field, ErrCodeInvalidRange, constraint, value))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// Count returns the number of collected errors (up to the cap)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns all errors seen, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a readable summary of the collection
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		sb.WriteString("  - " + err.Error() + "\n")
	}
	return sb.String()
}
