package csvimport

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Accepted layouts for the placed_at column, tried in order
var placedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// RowValidator applies the fixed per-field rules to mapped row values.
// Validation never mutates the row; blocking findings go into the
// shared error collection keyed by line number, recoverable oddities
// into the warnings list.
type RowValidator struct {
	mapping  FieldMapping
	errors   *ErrorCollection
	warnings []RowError
}

func NewRowValidator(mapping FieldMapping, errors *ErrorCollection) *RowValidator {
	return &RowValidator{mapping: mapping, errors: errors}
}

// Warnings returns the recoverable findings accumulated so far
func (v *RowValidator) Warnings() []RowError {
	return v.warnings
}

// Validate checks one row and returns true when it carries no errors.
// A row without a mapped order_number or with an empty order_number is
// rejected outright; other findings accumulate but processing may still
// decide to import the valid fields.
func (v *RowValidator) Validate(row *Row) bool {
	before := v.errors.TotalCount()

	v.validateOrderNumber(row)
	v.validateTotalAmount(row)
	v.validateCurrency(row)
	v.validateEmail(row)
	v.validateFinancialStatus(row)
	v.validatePlacedAt(row)
	v.validateLineItem(row)

	return v.errors.TotalCount() == before
}

func (v *RowValidator) validateOrderNumber(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldOrderNumber))
	if value == "" {
		v.errors.AddRequiredError(row.LineNumber, FieldOrderNumber)
	}
}

func (v *RowValidator) validateTotalAmount(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldTotalAmount))
	if value == "" {
		v.errors.AddRequiredError(row.LineNumber, FieldTotalAmount)
		return
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		v.errors.AddTypeError(row.LineNumber, FieldTotalAmount, "decimal number", value)
		return
	}
	if amount.IsNegative() {
		v.errors.AddRangeError(row.LineNumber, FieldTotalAmount, "must not be negative", value)
	}
}

func (v *RowValidator) validateCurrency(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldCurrency))
	if value == "" {
		return
	}
	if len(value) != 3 || !isLetters(value) {
		v.errors.AddFormatError(row.LineNumber, FieldCurrency, "3-letter currency code", value)
	}
}

func (v *RowValidator) validateEmail(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldEmail))
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.errors.AddFormatError(row.LineNumber, FieldEmail, "email address", value)
	}
}

// Recognized financial status labels; matching is case-insensitive.
// An unknown label is only a warning: processing falls back to pending
// and the row still imports.
var knownFinancialStatuses = map[string]bool{
	"paid": true, "pending": true, "refunded": true,
	"partially_refunded": true, "partially refunded": true,
	"voided": true, "unpaid": true, "authorized": true,
}

func (v *RowValidator) validateFinancialStatus(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldFinancialStatus))
	if value == "" {
		return
	}
	if !knownFinancialStatuses[strings.ToLower(value)] {
		v.warnings = append(v.warnings, NewRowErrorWithValue(row.LineNumber, FieldFinancialStatus,
			ErrCodeUnknownValue, "unrecognized financial status, will be imported as pending", value))
	}
}

func (v *RowValidator) validatePlacedAt(row *Row) {
	value := strings.TrimSpace(v.mapping.Value(row, FieldPlacedAt))
	if value == "" {
		return
	}
	if _, ok := ParsePlacedAt(value); !ok {
		v.errors.AddFormatError(row.LineNumber, FieldPlacedAt, "date or timestamp", value)
	}
}

func (v *RowValidator) validateLineItem(row *Row) {
	qty := strings.TrimSpace(v.mapping.Value(row, FieldLineItemQty))
	if qty != "" {
		n, err := strconv.Atoi(qty)
		if err != nil {
			v.errors.AddTypeError(row.LineNumber, FieldLineItemQty, "integer", qty)
		} else if n <= 0 {
			v.errors.AddRangeError(row.LineNumber, FieldLineItemQty, "must be positive", qty)
		}
	}

	price := strings.TrimSpace(v.mapping.Value(row, FieldLineItemPrice))
	if price != "" {
		p, err := decimal.NewFromString(price)
		if err != nil {
			v.errors.AddTypeError(row.LineNumber, FieldLineItemPrice, "decimal number", price)
		} else if p.IsNegative() {
			v.errors.AddRangeError(row.LineNumber, FieldLineItemPrice, "must not be negative", price)
		}
	}
}

// ParsePlacedAt parses a placed_at value against the accepted layouts
func ParsePlacedAt(value string) (time.Time, bool) {
	for _, layout := range placedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
