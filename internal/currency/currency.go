package currency

import (
	"strconv"
	"strings"
)

type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

const DefaultSymbol = "$"

var supported = []Currency{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "CHF", Symbol: "CHF", Name: "Swiss Franc"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
}

func Supported() []Currency {
	out := make([]Currency, len(supported))
	copy(out, supported)
	return out
}

func Lookup(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range supported {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Symbol falls back to "$" for unknown codes.
func Symbol(code string) string {
	if c, ok := Lookup(code); ok {
		return c.Symbol
	}
	return DefaultSymbol
}

// Format renders an amount with the currency symbol and thousands separators,
// keeping up to two decimals (trailing zeros dropped).
func Format(amount float64, code string) string {
	return Symbol(code) + groupThousands(amount)
}

func groupThousands(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
