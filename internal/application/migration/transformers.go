package migrationapp

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/integration"
	"github.com/storekit/backend/internal/domain/partner"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/domain/trade"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes markup from a description, keeping the text content
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := htmlTagPattern.ReplaceAllString(s, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&#39;", "'")
	return strings.Join(strings.Fields(text), " ")
}

// splitTags splits a platform's comma-separated tag string into a
// trimmed list, dropping empty entries
func splitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseAmount parses a decimal amount string; empty means zero
func parseAmount(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

var productStatuses = map[string]catalog.ProductStatus{
	"active":   catalog.ProductStatusActive,
	"draft":    catalog.ProductStatusDraft,
	"archived": catalog.ProductStatusArchived,
}

// TransformProduct converts an external product to its canonical form.
// The product's price is the lowest variant price, images keep their
// source ordering and the entity ID is derived from the external ID so
// repeat imports land on the same row.
func TransformProduct(storeID uuid.UUID, sourceTag string, ext integration.ExternalProduct) (*catalog.Product, error) {
	if ext.ID == "" {
		return nil, fmt.Errorf("product has no external id")
	}
	if strings.TrimSpace(ext.Title) == "" {
		return nil, fmt.Errorf("product %s has no title", ext.ID)
	}

	variants := make([]catalog.Variant, 0, len(ext.Variants))
	var minPrice decimal.Decimal
	for i, ev := range ext.Variants {
		price, err := parseAmount("variant price", ev.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", ext.ID, err)
		}
		compareAt, err := parseAmount("variant compare_at_price", ev.CompareAtPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", ext.ID, err)
		}
		variants = append(variants, catalog.Variant{
			ExternalID:        ev.ID,
			Title:             ev.Title,
			SKU:               ev.SKU,
			Price:             price,
			CompareAtPrice:    compareAt,
			Position:          ev.Position,
			InventoryQuantity: ev.InventoryQuantity,
			Options:           ev.OptionValues,
		})
		if i == 0 || price.LessThan(minPrice) {
			minPrice = price
		}
	}

	ordered := make([]integration.ExternalImage, len(ext.Images))
	copy(ordered, ext.Images)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	imageURLs := make([]string, 0, len(ordered))
	for _, img := range ordered {
		if img.Src != "" {
			imageURLs = append(imageURLs, img.Src)
		}
	}

	status, ok := productStatuses[strings.ToLower(ext.Status)]
	if !ok {
		status = catalog.ProductStatusActive
	}

	product := &catalog.Product{
		StoreEntity: shared.NewImportedEntity(storeID, sourceTag, ext.ID),
		SourceTag:   sourceTag,
		ExternalID:  ext.ID,
		Title:       ext.Title,
		Description: stripHTML(ext.BodyHTML),
		Slug:        ext.Handle,
		Vendor:      ext.Vendor,
		ProductType: ext.ProductType,
		Tags:        splitTags(ext.Tags),
		Price:       minPrice,
		HasVariants: len(variants) > 1,
		Variants:    variants,
		Images:      imageURLs,
		Status:      status,
	}
	return product, nil
}

// Canonical vocabulary for automatic collection rules. Source values
// outside the tables pass through unchanged rather than failing the
// collection.
var (
	collectionRuleFields = map[string]string{
		"title":         "title",
		"type":          "product_type",
		"product_type":  "product_type",
		"vendor":        "vendor",
		"tag":           "tag",
		"variant_price": "price",
	}
	collectionRuleOperators = map[string]string{
		"equals":       "equals",
		"not_equals":   "not_equals",
		"contains":     "contains",
		"not_contains": "not_contains",
		"starts_with":  "starts_with",
		"ends_with":    "ends_with",
		"greater_than": "greater_than",
		"less_than":    "less_than",
	}
)

// TransformCollection converts an external collection. A collection
// carrying an explicit product list becomes manual; all others are
// automatic and keep their membership rules. Listed product IDs are
// resolved to the canonical IDs those products import under, whether or
// not they have been imported yet.
func TransformCollection(storeID uuid.UUID, sourceTag string, ext integration.ExternalCollection) (*catalog.Collection, error) {
	if ext.ID == "" {
		return nil, fmt.Errorf("collection has no external id")
	}
	if strings.TrimSpace(ext.Title) == "" {
		return nil, fmt.Errorf("collection %s has no title", ext.ID)
	}

	collection := &catalog.Collection{
		StoreEntity: shared.NewImportedEntity(storeID, sourceTag, ext.ID),
		SourceTag:   sourceTag,
		ExternalID:  ext.ID,
		Title:       ext.Title,
		Description: stripHTML(ext.BodyHTML),
		Slug:        ext.Handle,
		ImageURL:    ext.ImageSrc,
		Disjunctive: ext.Disjunctive,
	}

	if len(ext.ProductIDs) > 0 {
		collection.Type = catalog.CollectionTypeManual
		collection.ProductIDs = make([]uuid.UUID, 0, len(ext.ProductIDs))
		for _, pid := range ext.ProductIDs {
			collection.ProductIDs = append(collection.ProductIDs, shared.CanonicalID(sourceTag, pid))
		}
		return collection, nil
	}

	collection.Type = catalog.CollectionTypeAuto
	collection.Rules = make([]catalog.CollectionRule, 0, len(ext.Rules))
	for _, r := range ext.Rules {
		field := r.Column
		if mapped, ok := collectionRuleFields[strings.ToLower(r.Column)]; ok {
			field = mapped
		}
		operator := r.Relation
		if mapped, ok := collectionRuleOperators[strings.ToLower(r.Relation)]; ok {
			operator = mapped
		}
		collection.Rules = append(collection.Rules, catalog.CollectionRule{
			Field:    field,
			Operator: operator,
			Value:    r.Condition,
		})
	}
	return collection, nil
}

// TransformCustomer converts an external customer and its addresses.
// At most one address stays marked default; when the source flags
// several, the first wins.
func TransformCustomer(storeID uuid.UUID, sourceTag string, ext integration.ExternalCustomer) (*partner.Customer, []partner.Address, error) {
	if ext.ID == "" {
		return nil, nil, fmt.Errorf("customer has no external id")
	}

	customer := &partner.Customer{
		StoreEntity:      shared.NewImportedEntity(storeID, sourceTag, ext.ID),
		SourceTag:        sourceTag,
		ExternalID:       ext.ID,
		Email:            strings.ToLower(strings.TrimSpace(ext.Email)),
		FirstName:        ext.FirstName,
		LastName:         ext.LastName,
		Phone:            ext.Phone,
		AcceptsMarketing: ext.AcceptsMarketing,
		TaxExempt:        ext.TaxExempt,
		Tags:             splitTags(ext.Tags),
		Note:             ext.Note,
	}

	addresses := make([]partner.Address, 0, len(ext.Addresses))
	defaultSeen := false
	for _, ea := range ext.Addresses {
		isDefault := ea.Default && !defaultSeen
		if isDefault {
			defaultSeen = true
		}
		addresses = append(addresses, partner.Address{
			StoreEntity: shared.NewStoreEntity(storeID),
			CustomerID:  customer.ID,
			ExternalID:  ea.ID,
			FirstName:   ea.FirstName,
			LastName:    ea.LastName,
			Company:     ea.Company,
			Address1:    ea.Address1,
			Address2:    ea.Address2,
			City:        ea.City,
			Province:    ea.Province,
			Country:     ea.Country,
			Zip:         ea.Zip,
			Phone:       ea.Phone,
			IsDefault:   isDefault,
		})
	}
	return customer, addresses, nil
}

var financialStatuses = map[string]trade.FinancialStatus{
	"pending":            trade.FinancialStatusPending,
	"authorized":         trade.FinancialStatusAuthorized,
	"paid":               trade.FinancialStatusPaid,
	"partially_paid":     trade.FinancialStatusPartiallyPaid,
	"refunded":           trade.FinancialStatusRefunded,
	"partially_refunded": trade.FinancialStatusPartiallyRefunded,
	"voided":             trade.FinancialStatusVoided,
}

var fulfillmentStatuses = map[string]trade.FulfillmentStatus{
	"unfulfilled": trade.FulfillmentStatusUnfulfilled,
	"partial":     trade.FulfillmentStatusPartial,
	"fulfilled":   trade.FulfillmentStatusFulfilled,
	"restocked":   trade.FulfillmentStatusRestocked,
	"shipped":     trade.FulfillmentStatusFulfilled,
}

// TransformOrder converts an external order with its line items and
// refunds. Unknown statuses fall back to pending/unfulfilled. A line
// item keeps a product reference only when the source names one; a
// refund's amount is the sum of its transaction amounts.
func TransformOrder(storeID uuid.UUID, sourceTag string, ext integration.ExternalOrder) (*trade.Order, []trade.LineItem, []trade.Refund, error) {
	if ext.ID == "" {
		return nil, nil, nil, fmt.Errorf("order has no external id")
	}

	total, err := parseAmount("total_price", ext.TotalPrice)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("order %s: %w", ext.ID, err)
	}
	subtotal, err := parseAmount("subtotal_price", ext.SubtotalPrice)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("order %s: %w", ext.ID, err)
	}
	tax, err := parseAmount("total_tax", ext.TotalTax)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("order %s: %w", ext.ID, err)
	}
	discount, err := parseAmount("total_discounts", ext.TotalDiscounts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("order %s: %w", ext.ID, err)
	}

	financial, ok := financialStatuses[strings.ToLower(ext.FinancialStatus)]
	if !ok {
		financial = trade.FinancialStatusPending
	}
	fulfillment, ok := fulfillmentStatuses[strings.ToLower(ext.FulfillmentStatus)]
	if !ok {
		fulfillment = trade.FulfillmentStatusUnfulfilled
	}

	currency := strings.ToUpper(strings.TrimSpace(ext.Currency))
	if currency == "" {
		currency = "USD"
	}

	order := &trade.Order{
		StoreEntity:       shared.NewImportedEntity(storeID, sourceTag, ext.ID),
		SourceTag:         sourceTag,
		ExternalID:        ext.ID,
		OrderNumber:       ext.OrderNumber,
		Email:             strings.ToLower(strings.TrimSpace(ext.Email)),
		Currency:          currency,
		TotalAmount:       total,
		SubtotalAmount:    subtotal,
		TaxAmount:         tax,
		DiscountAmount:    discount,
		FinancialStatus:   financial,
		FulfillmentStatus: fulfillment,
		Note:              ext.Note,
	}
	if ext.CustomerID != "" {
		cid := shared.CanonicalID(sourceTag, ext.CustomerID)
		order.CustomerID = &cid
	}
	if ext.CreatedAt != "" {
		if placed, err := time.Parse(time.RFC3339, ext.CreatedAt); err == nil {
			order.PlacedAt = &placed
		}
	}

	lineItems := make([]trade.LineItem, 0, len(ext.LineItems))
	for _, eli := range ext.LineItems {
		price, err := parseAmount("line item price", eli.Price)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("order %s: %w", ext.ID, err)
		}
		quantity := eli.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		item := trade.LineItem{
			StoreEntity: shared.NewStoreEntity(storeID),
			OrderID:     order.ID,
			ExternalID:  eli.ID,
			Title:       eli.Title,
			SKU:         eli.SKU,
			Quantity:    quantity,
			UnitPrice:   price,
		}
		if eli.ProductID != "" {
			pid := shared.CanonicalID(sourceTag, eli.ProductID)
			item.ProductID = &pid
		}
		lineItems = append(lineItems, item)
	}

	refunds := make([]trade.Refund, 0, len(ext.Refunds))
	for _, er := range ext.Refunds {
		amount := decimal.Zero
		for _, tx := range er.Transactions {
			txAmount, err := parseAmount("refund transaction amount", tx.Amount)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("order %s refund %s: %w", ext.ID, er.ID, err)
			}
			amount = amount.Add(txAmount)
		}
		refund := trade.Refund{
			StoreEntity: shared.NewStoreEntity(storeID),
			OrderID:     order.ID,
			ExternalID:  er.ID,
			Amount:      amount,
			Note:        er.Note,
		}
		if er.ProcessedAt != "" {
			if processed, err := time.Parse(time.RFC3339, er.ProcessedAt); err == nil {
				refund.ProcessedAt = &processed
			}
		}
		refunds = append(refunds, refund)
	}

	return order, lineItems, refunds, nil
}
