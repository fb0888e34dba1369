package cli

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		expected string
	}{
		{name: "zero", value: decimal.Zero, expected: "$0.00"},
		{name: "one decimal", value: decimal.RequireFromString("2.5"), expected: "$2.50"},
		{name: "rounds half up", value: decimal.RequireFromString("1.005"), expected: "$1.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Money(tt.value))
		})
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Table(&buf, []string{"ID", "NAME"}, [][]string{{"1", "Milk"}, {"22", "Bread"}}))

	assert.Equal(t, "ID  NAME\n1   Milk\n22  Bread\n", buf.String())
}
