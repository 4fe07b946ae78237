package integration

// External record shapes returned by the source platform's paginated
// API. Amount fields arrive as decimal strings and are parsed during
// transformation; missing optional fields decode to zero values.

// ExternalVariant is one sellable variation of an external product
type ExternalVariant struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	SKU               string   `json:"sku"`
	Price             string   `json:"price"`
	CompareAtPrice    string   `json:"compare_at_price"`
	Position          int      `json:"position"`
	InventoryQuantity int      `json:"inventory_quantity"`
	OptionValues      []string `json:"option_values"`
}

// ExternalImage is an externally hosted product image
type ExternalImage struct {
	ID       string `json:"id"`
	Src      string `json:"src"`
	Position int    `json:"position"`
	Alt      string `json:"alt"`
}

// ExternalProduct is a product record from the source platform
type ExternalProduct struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	BodyHTML    string            `json:"body_html"`
	Handle      string            `json:"handle"`
	Vendor      string            `json:"vendor"`
	ProductType string            `json:"product_type"`
	Tags        string            `json:"tags"`
	Status      string            `json:"status"`
	Variants    []ExternalVariant `json:"variants"`
	Images      []ExternalImage   `json:"images"`
}

// ExternalCollectionRule is one membership condition of a rule-driven
// external collection
type ExternalCollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

// ExternalCollection is a collection record from the source platform.
// Collections carrying an explicit ProductIDs list are manual; all
// others are automatic and carry Rules.
type ExternalCollection struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	BodyHTML    string                   `json:"body_html"`
	Handle      string                   `json:"handle"`
	ImageSrc    string                   `json:"image_src"`
	ProductIDs  []string                 `json:"product_ids"`
	Rules       []ExternalCollectionRule `json:"rules"`
	Disjunctive bool                     `json:"disjunctive"`
}

// ExternalAddress is one postal address of an external customer
type ExternalAddress struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	Phone     string `json:"phone"`
	Default   bool   `json:"default"`
}

// ExternalCustomer is a customer record from the source platform
type ExternalCustomer struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Phone            string            `json:"phone"`
	AcceptsMarketing bool              `json:"accepts_marketing"`
	TaxExempt        bool              `json:"tax_exempt"`
	Tags             string            `json:"tags"`
	Note             string            `json:"note"`
	Addresses        []ExternalAddress `json:"addresses"`
}

// ExternalLineItem is one purchased line of an external order
type ExternalLineItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// ExternalTransaction is one money movement inside a refund
type ExternalTransaction struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Kind   string `json:"kind"`
}

// ExternalRefund is a refund against an external order
type ExternalRefund struct {
	ID           string                `json:"id"`
	Note         string                `json:"note"`
	ProcessedAt  string                `json:"processed_at"`
	Transactions []ExternalTransaction `json:"transactions"`
}

// ExternalOrder is an order record from the source platform
type ExternalOrder struct {
	ID                string             `json:"id"`
	OrderNumber       string             `json:"order_number"`
	Email             string             `json:"email"`
	CustomerID        string             `json:"customer_id"`
	Currency          string             `json:"currency"`
	TotalPrice        string             `json:"total_price"`
	SubtotalPrice     string             `json:"subtotal_price"`
	TotalTax          string             `json:"total_tax"`
	TotalDiscounts    string             `json:"total_discounts"`
	FinancialStatus   string             `json:"financial_status"`
	FulfillmentStatus string             `json:"fulfillment_status"`
	Note              string             `json:"note"`
	CreatedAt         string             `json:"created_at"`
	LineItems         []ExternalLineItem `json:"line_items"`
	Refunds           []ExternalRefund   `json:"refunds"`
}
