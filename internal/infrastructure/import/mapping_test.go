package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	t.Run("Shopline export", func(t *testing.T) {
		headers := []string{"Name", "Email", "Financial Status", "Total", "Currency", "Lineitem name"}
		assert.Equal(t, PlatformShopline, DetectPlatform(headers))
	})

	t.Run("WooCart export", func(t *testing.T) {
		headers := []string{"Order ID", "Billing Email", "Order Total", "Date"}
		assert.Equal(t, PlatformWooCart, DetectPlatform(headers))
	})

	t.Run("BigMerchant export", func(t *testing.T) {
		headers := []string{"Order Number", "Customer Email", "Order Total inc Tax"}
		assert.Equal(t, PlatformBigMerchant, DetectPlatform(headers))
	})

	t.Run("Unknown header set falls back to custom", func(t *testing.T) {
		headers := []string{"ref", "buyer", "amount"}
		assert.Equal(t, PlatformCustom, DetectPlatform(headers))
	})

	t.Run("Partial signature does not match", func(t *testing.T) {
		headers := []string{"Name", "Email", "Total"}
		assert.Equal(t, PlatformCustom, DetectPlatform(headers))
	})
}

func TestSuggestMapping(t *testing.T) {
	t.Run("Headers match case-insensitively with punctuation normalized", func(t *testing.T) {
		headers := []string{"Order_Number", "EMAIL", "Total Amount", "Lineitem-SKU"}
		mapping := SuggestMapping(headers)

		assert.Equal(t, FieldOrderNumber, mapping["Order_Number"])
		assert.Equal(t, FieldEmail, mapping["EMAIL"])
		assert.Equal(t, FieldTotalAmount, mapping["Total Amount"])
		assert.Equal(t, FieldLineItemSKU, mapping["Lineitem-SKU"])
	})

	t.Run("Unmatched headers are left unmapped", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Email", "Internal Notes"})

		assert.Equal(t, FieldEmail, mapping["Email"])
		_, mapped := mapping["Internal Notes"]
		assert.False(t, mapped)
	})

	t.Run("First matching header claims the field", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Email", "Customer Email"})

		assert.Equal(t, FieldEmail, mapping["Email"])
		_, mapped := mapping["Customer Email"]
		assert.False(t, mapped)
	})
}

func TestFieldMappingValidate(t *testing.T) {
	t.Run("Valid mapping", func(t *testing.T) {
		mapping := FieldMapping{
			"Order": FieldOrderNumber,
			"Total": FieldTotalAmount,
			"Notes": FieldIgnored,
		}
		assert.NoError(t, mapping.Validate())
	})

	t.Run("Two columns mapped to one field is rejected", func(t *testing.T) {
		mapping := FieldMapping{
			"Order":  FieldOrderNumber,
			"Number": FieldOrderNumber,
		}
		err := mapping.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), FieldOrderNumber)
	})

	t.Run("Unknown target field is rejected", func(t *testing.T) {
		mapping := FieldMapping{"Order": "order_ref"}
		assert.Error(t, mapping.Validate())
	})
}

func TestFieldMappingValue(t *testing.T) {
	mapping := FieldMapping{"Total": FieldTotalAmount}
	row := &Row{LineNumber: 2, Data: map[string]string{"Total": "19.90"}}

	assert.Equal(t, "19.90", mapping.Value(row, FieldTotalAmount))
	assert.Equal(t, "", mapping.Value(row, FieldEmail))
}
