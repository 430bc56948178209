package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"3 pcs", 3},
		{"2.7", 2},
		{"+4", 4},
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-2", 1},
		{"-", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseQuantity(tt.in))
		})
	}
}

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Quantity
	}{
		{"number", `5`, 5},
		{"string", `"6"`, 6},
		{"float", `2.9`, 2},
		{"garbage string", `"many"`, 1},
		{"null", `null`, 1},
		{"negative", `-1`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.json), &q))
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestOrder_Recalculate(t *testing.T) {
	o := &Order{Items: []LineItem{
		{ProductID: "a", Price: mustDecimal("1.10"), Quantity: 3},
		{ProductID: "b", Price: mustDecimal("0.05"), Quantity: 2},
	}}

	o.Recalculate()

	assert.Equal(t, "3.3", o.Items[0].Subtotal.String())
	assert.Equal(t, "0.1", o.Items[1].Subtotal.String())
	assert.Equal(t, "3.4", o.TotalAmount.String())
}

func TestOrder_WithoutProduct(t *testing.T) {
	o := &Order{Items: []LineItem{{ProductID: "a"}, {ProductID: "b"}, {ProductID: "a"}}}

	rest := o.withoutProduct("a")

	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].ProductID)
	assert.Len(t, o.Items, 3)
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
