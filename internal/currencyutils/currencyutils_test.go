package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Empty string", "", "0", false},
		{"Blank string", "   ", "0", false},
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "150", "150", false},
		{"Comma decimal separator", "123,45", "123.45", false},
		{"Comma thousand separator", "1,234.56", "1234.56", false},
		{"Indian grouping", "1,23,456.00", "123456", false},
		{"Comma thousands only", "1,500", "1500", false},
		{"Apostrophe thousands", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"Rupee symbol", "₹ 1,500.50", "1500.50", false},
		{"Rs prefix", "Rs. 250", "250", false},
		{"INR code", "INR 99.99", "99.99", false},
		{"Currency code", "CHF 123.45", "123.45", false},
		{"Dr suffix", "500.00 Dr", "-500", false},
		{"Cr suffix", "500.00 Cr", "500", false},
		{"Parenthesised negative", "(75.25)", "-75.25", false},
		{"Malformed decimal", "123.45.67", "0", true},
		{"Non-numeric", "abc", "0", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.expected).Equal(result), "expected %s, got %s", tc.expected, result)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	assert.Equal(t, "1234567.89", StandardizeAmount("1,234,567.89"))
	assert.Equal(t, "1234567.89", StandardizeAmount("1.234.567,89"))
	assert.Equal(t, "1234.56", StandardizeAmount("€1.234,56"))
	assert.Equal(t, "-42", StandardizeAmount("-42"))
}
