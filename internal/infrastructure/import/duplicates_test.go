package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRows(numbers ...string) []*Row {
	rows := make([]*Row, len(numbers))
	for i, n := range numbers {
		rows[i] = &Row{LineNumber: i + 2, Data: map[string]string{"Order": n}}
	}
	return rows
}

func TestFindDuplicates(t *testing.T) {
	mapping := FieldMapping{"Order": FieldOrderNumber}

	t.Run("Groups repeated keys with original indices", func(t *testing.T) {
		groups := FindDuplicates(orderRows("A", "B", "A", "C", "B"), mapping)

		require.Len(t, groups, 2)
		assert.Equal(t, "a", groups[0].Key)
		assert.Equal(t, []int{0, 2}, groups[0].RowIndices)
		assert.Equal(t, "b", groups[1].Key)
		assert.Equal(t, []int{1, 4}, groups[1].RowIndices)
	})

	t.Run("Comparison is case-insensitive", func(t *testing.T) {
		groups := FindDuplicates(orderRows("ord-1", "ORD-1"), mapping)

		require.Len(t, groups, 1)
		assert.Equal(t, []int{0, 1}, groups[0].RowIndices)
	})

	t.Run("Unique keys produce no groups", func(t *testing.T) {
		groups := FindDuplicates(orderRows("A", "B", "C"), mapping)
		assert.Empty(t, groups)
	})

	t.Run("Empty keys are not grouped", func(t *testing.T) {
		groups := FindDuplicates(orderRows("", "", "A"), mapping)
		assert.Empty(t, groups)
	})

	t.Run("Unmapped order number yields nothing", func(t *testing.T) {
		groups := FindDuplicates(orderRows("A", "A"), FieldMapping{})
		assert.Empty(t, groups)
	})
}
