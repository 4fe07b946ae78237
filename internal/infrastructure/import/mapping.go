package csvimport

import (
	"fmt"
	"strings"
)

// Canonical order fields a source column can map to. A column mapped
// to FieldIgnored is skipped during processing.
const (
	FieldOrderNumber     = "order_number"
	FieldEmail           = "email"
	FieldCustomerName    = "customer_name"
	FieldTotalAmount     = "total_amount"
	FieldCurrency        = "currency"
	FieldFinancialStatus = "financial_status"
	FieldPlacedAt        = "placed_at"
	FieldLineItemName    = "lineitem_name"
	FieldLineItemQty     = "lineitem_quantity"
	FieldLineItemPrice   = "lineitem_price"
	FieldLineItemSKU     = "lineitem_sku"
	FieldIgnored         = "ignored"
)

// CanonicalFields lists every mappable canonical field
func CanonicalFields() []string {
	return []string{
		FieldOrderNumber,
		FieldEmail,
		FieldCustomerName,
		FieldTotalAmount,
		FieldCurrency,
		FieldFinancialStatus,
		FieldPlacedAt,
		FieldLineItemName,
		FieldLineItemQty,
		FieldLineItemPrice,
		FieldLineItemSKU,
	}
}

// Platform identifies the source platform a file was exported from.
// Detection only selects which default mapping is preloaded; an
// unknown platform never blocks the import.
type Platform string

const (
	PlatformShopline    Platform = "shopline"
	PlatformWooCart     Platform = "woocart"
	PlatformBigMerchant Platform = "bigmerchant"
	PlatformCustom      Platform = "custom"
)

// platformSignatures lists the normalized header names a file must all
// carry to be classified as an export of that platform. Order matters:
// the first full match wins.
var platformSignatures = []struct {
	platform Platform
	required []string
}{
	{PlatformShopline, []string{"name", "email", "financial status", "total", "lineitem name"}},
	{PlatformWooCart, []string{"order id", "billing email", "order total"}},
	{PlatformBigMerchant, []string{"order number", "customer email", "order total inc tax"}},
}

// fieldAliases maps each canonical field to the normalized source
// column names commonly used for it across platform exports.
var fieldAliases = map[string][]string{
	FieldOrderNumber:     {"name", "order", "order id", "order number", "number", "reference"},
	FieldEmail:           {"email", "customer email", "billing email", "buyer email"},
	FieldCustomerName:    {"customer name", "billing name", "shipping name", "buyer name"},
	FieldTotalAmount:     {"total", "order total", "total amount", "order total inc tax", "total price", "grand total"},
	FieldCurrency:        {"currency", "currency code", "order currency"},
	FieldFinancialStatus: {"financial status", "payment status", "paid status"},
	FieldPlacedAt:        {"created at", "paid at", "order date", "date", "placed at"},
	FieldLineItemName:    {"lineitem name", "line item name", "item name", "product name"},
	FieldLineItemQty:     {"lineitem quantity", "line item quantity", "item quantity", "quantity", "qty"},
	FieldLineItemPrice:   {"lineitem price", "line item price", "item price", "unit price"},
	FieldLineItemSKU:     {"lineitem sku", "line item sku", "item sku", "sku", "product sku"},
}

// FieldMapping maps source column names to canonical fields. Columns
// absent from the map are ignored. Each source column maps to at most
// one field and no two columns may claim the same field.
type FieldMapping map[string]string

// DetectPlatform classifies a header row against the known platform
// signatures. Matching is case-insensitive and punctuation-normalized.
func DetectPlatform(headers []string) Platform {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}

	for _, sig := range platformSignatures {
		matched := true
		for _, req := range sig.required {
			if !present[req] {
				matched = false
				break
			}
		}
		if matched {
			return sig.platform
		}
	}
	return PlatformCustom
}

// SuggestMapping proposes a field mapping for the given headers.
// Each header is matched case-insensitively and punctuation-normalized
// against the alias table; unmatched headers are left out (ignored).
// A canonical field is claimed by the first header that matches it.
func SuggestMapping(headers []string) FieldMapping {
	mapping := make(FieldMapping)
	claimed := make(map[string]bool)

	for _, header := range headers {
		norm := normalizeHeader(header)
		if norm == "" {
			continue
		}
		field := matchAlias(norm)
		if field == "" || claimed[field] {
			continue
		}
		mapping[header] = field
		claimed[field] = true
	}

	return mapping
}

// matchAlias returns the canonical field for a normalized header, or ""
func matchAlias(norm string) string {
	for _, field := range CanonicalFields() {
		for _, alias := range fieldAliases[field] {
			if norm == alias {
				return field
			}
		}
	}
	return ""
}

// Validate checks mapping consistency: every target must be a known
// canonical field (or "ignored") and no two source columns may map to
// the same field.
func (m FieldMapping) Validate() error {
	known := make(map[string]bool, len(CanonicalFields()))
	for _, f := range CanonicalFields() {
		known[f] = true
	}

	used := make(map[string]string)
	for column, field := range m {
		if field == FieldIgnored || field == "" {
			continue
		}
		if !known[field] {
			return fmt.Errorf("unknown target field %q for column %q", field, column)
		}
		if prev, ok := used[field]; ok {
			return fmt.Errorf("columns %q and %q both map to field %q", prev, column, field)
		}
		used[field] = column
	}
	return nil
}

// ColumnFor returns the source column mapped to a canonical field, or ""
func (m FieldMapping) ColumnFor(field string) string {
	for column, f := range m {
		if f == field {
			return column
		}
	}
	return ""
}

// Value reads the mapped value of a canonical field from a row
func (m FieldMapping) Value(row *Row, field string) string {
	column := m.ColumnFor(field)
	if column == "" {
		return ""
	}
	return row.Get(column)
}

// normalizeHeader lowercases a header and collapses punctuation to
// single spaces so "Lineitem_Name" and "lineitem name" compare equal
func normalizeHeader(h string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
