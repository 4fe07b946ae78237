package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("Valid UTF-8 CSV", func(t *testing.T) {
		csv := "order,email,total\n1001,a@example.com,10.00"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NotNil(t, parser)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := "\xEF\xBB\xBForder,email\n1001,a@example.com"
		parser, err := NewCSVParser(strings.NewReader(csv))

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, "order", parser.Headers()[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))

		assert.Error(t, err)
		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid UTF-8 returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("order\n\xff\xfe"))

		assert.Error(t, err)
		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		csv := "order;email;total\n1001;a@example.com;10.00"
		parser, err := NewCSVParser(strings.NewReader(csv), WithDelimiter(';'))

		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"order", "email", "total"}, parser.Headers())
	})
}

func TestReadRow(t *testing.T) {
	t.Run("Rows carry 1-based file line numbers", func(t *testing.T) {
		csv := "order,total\n1001,10.00\n1002,20.00"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "1001", row.Get("order"))

		row, err = parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 3, row.LineNumber)
		assert.Equal(t, "20.00", row.Get("total"))
	})

	t.Run("Empty rows are skipped", func(t *testing.T) {
		csv := "order,total\n1001,10.00\n,\n1002,20.00"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "1001", rows[0].Get("order"))
		assert.Equal(t, "1002", rows[1].Get("order"))
	})

	t.Run("Ragged rows tolerate missing trailing fields", func(t *testing.T) {
		csv := "order,email,total\n1001,a@example.com\n"
		parser, err := NewCSVParser(strings.NewReader(csv))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Get("total"))
	})
}
