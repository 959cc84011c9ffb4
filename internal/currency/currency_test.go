package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"USD", "$"},
		{"eur", "€"},
		{" GBP ", "£"},
		{"CHF", "CHF"},
		{"SGD", "S$"},
		{"XYZ", "$"},
		{"", "$"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, Symbol(tt.code))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		code     string
		expected string
	}{
		{"zero", 0, "USD", "$0"},
		{"hundreds", 950, "USD", "$950"},
		{"thousands", 1500, "EUR", "€1,500"},
		{"millions", 2500000, "INR", "₹2,500,000"},
		{"cents", 1234.5, "GBP", "£1,234.5"},
		{"rounded cents", 99.999, "USD", "$100"},
		{"negative", -12000, "CAD", "C$-12,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.amount, tt.code))
		})
	}
}

func TestSupported(t *testing.T) {
	list := Supported()
	assert.Len(t, list, 10)
	assert.True(t, IsSupported("JPY"))
	assert.False(t, IsSupported("BTC"))

	list[0].Symbol = "changed"
	assert.Equal(t, "$", Symbol("USD"))
}
