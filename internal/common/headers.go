// Package common holds the helpers shared by the tabular extractors and the
// CSV output writer.
package common

import (
	"strings"
)

// Keyword lists used to recognise the columns a statement must provide.
var (
	DateKeywords        = []string{"date"}
	DescriptionKeywords = []string{"desc", "detail", "narrative", "transaction"}
	AmountKeywords      = []string{"amount", "value", "debit", "credit"}
)

// HeaderReport says which required column classes were found in a header row.
type HeaderReport struct {
	DateColumns        []string
	DescriptionColumns []string
	AmountColumns      []string
}

// Valid reports whether every required class has at least one column.
func (r HeaderReport) Valid() bool {
	return len(r.DateColumns) > 0 && len(r.DescriptionColumns) > 0 && len(r.AmountColumns) > 0
}

// Missing lists the names of the classes without a matching column.
func (r HeaderReport) Missing() []string {
	var missing []string
	if len(r.DateColumns) == 0 {
		missing = append(missing, "date")
	}
	if len(r.DescriptionColumns) == 0 {
		missing = append(missing, "description")
	}
	if len(r.AmountColumns) == 0 {
		missing = append(missing, "amount")
	}
	return missing
}

// ValidateHeaders classifies headers by case-insensitive substring match.
// A column may count for more than one class ("Transaction Date").
func ValidateHeaders(headers []string) HeaderReport {
	var r HeaderReport
	for _, h := range headers {
		lower := strings.ToLower(h)
		if containsAny(lower, DateKeywords) {
			r.DateColumns = append(r.DateColumns, h)
		}
		if containsAny(lower, DescriptionKeywords) {
			r.DescriptionColumns = append(r.DescriptionColumns, h)
		}
		if containsAny(lower, AmountKeywords) {
			r.AmountColumns = append(r.AmountColumns, h)
		}
	}
	return r
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// FormatRow renders one data row as "Key: value" pairs joined by ", " in
// header order. Values beyond the header are ignored and missing values are
// rendered empty.
func FormatRow(headers, values []string) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(h)
		b.WriteString(": ")
		if i < len(values) {
			b.WriteString(values[i])
		}
	}
	return b.String()
}

// FormatCells is FormatRow for sparse rows: blank cells are left out, the
// way spreadsheet-to-object conversion drops empty cells.
func FormatCells(headers, values []string) string {
	var b strings.Builder
	for i, h := range headers {
		if i >= len(values) || strings.TrimSpace(values[i]) == "" || strings.TrimSpace(h) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(h)
		b.WriteString(": ")
		b.WriteString(values[i])
	}
	return b.String()
}

// IsBlankRow reports whether every cell is empty or whitespace.
func IsBlankRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
