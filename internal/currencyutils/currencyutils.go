// Package currencyutils normalizes the amount strings found in bank statements
// and categorization responses into decimal values.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencyPattern = regexp.MustCompile(`(?i)(INR|Rs\.?|CHF|EUR|USD|GBP)|[€$£¥₹\s]`)
	drCrPattern     = regexp.MustCompile(`(?i)\s*(DR|CR)\.?$`)
)

// ParseAmount parses an amount string into a decimal. Empty input is zero.
// It handles "1,234.56", "1.234,56", "1,23,456.00", "(150.00)", "₹ 1,500" and
// trailing "Dr"/"Cr" markers ("Dr" makes the amount negative).
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)
	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount rewrites an amount string into a form accepted by
// decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = strings.TrimSpace(amountStr)

	negative := false
	if m := drCrPattern.FindStringSubmatch(amountStr); m != nil {
		negative = strings.EqualFold(m[1], "DR")
		amountStr = drCrPattern.ReplaceAllString(amountStr, "")
	}
	if strings.HasPrefix(amountStr, "(") && strings.HasSuffix(amountStr, ")") {
		negative = true
		amountStr = strings.TrimSuffix(strings.TrimPrefix(amountStr, "("), ")")
	}

	amountStr = currencyPattern.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	switch {
	case strings.Contains(amountStr, ",") && strings.Contains(amountStr, "."):
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56 and 1,23,456.00
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case strings.Contains(amountStr, ","):
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}

	if negative && !strings.HasPrefix(amountStr, "-") {
		amountStr = "-" + amountStr
	}
	return amountStr
}
