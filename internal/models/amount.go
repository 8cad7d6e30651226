package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"fjacquet/ledger-ingest/internal/currencyutils"
)

// Amount is a monetary value decoded from either a JSON number or a JSON
// string. Strings that cannot be read as an amount decode to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromString parses s with the statement amount rules; the error is
// returned alongside a zero amount.
func AmountFromString(s string) (Amount, error) {
	d, err := currencyutils.ParseAmount(s)
	if err != nil {
		return Amount{Decimal: decimal.Zero}, err
	}
	return Amount{Decimal: d}, nil
}

// MustAmount parses s and panics on failure. Intended for tests and constants.
func MustAmount(s string) Amount {
	a, err := AmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts 150, 150.5, "150.50", "₹1,500" and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid amount %s: %w", data, err)
		}
		d, err := currencyutils.ParseAmount(s)
		if err != nil {
			d = decimal.Zero
		}
		a.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	a.Decimal = d
	return nil
}

// MarshalCSV renders the amount with two decimals.
func (a Amount) MarshalCSV() (string, error) {
	return a.Decimal.StringFixed(2), nil
}

// UnmarshalCSV parses a CSV cell with the statement amount rules.
func (a *Amount) UnmarshalCSV(s string) error {
	d, err := currencyutils.ParseAmount(s)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// Equal compares two amounts numerically.
func (a Amount) Equal(other Amount) bool {
	return a.Decimal.Equal(other.Decimal)
}
