package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in    string
		want  TransactionType
		valid bool
	}{
		{"credit", TypeCredit, true},
		{" Expense ", TypeExpense, true},
		{"CREDIT", TypeCredit, true},
		{"debit", TransactionType("debit"), false},
		{"", TransactionType(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTransactionType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestParseAccountType(t *testing.T) {
	assert.Equal(t, AccountTypeCreditCard, ParseAccountType("credit_card"))
	assert.Equal(t, AccountTypeCreditCard, ParseAccountType("Card"))
	assert.Equal(t, AccountTypeBank, ParseAccountType("bank_account"))
	assert.Equal(t, AccountTypeBank, ParseAccountType(""))
}

func TestCandidateTransaction_JSON(t *testing.T) {
	raw := `{"date":"01/01/2024","description":"Coffee Shop","amount":"150","type":"expense","category":"Outside Food"}`
	var c CandidateTransaction
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "01/01/2024", c.Date)
	assert.Equal(t, TypeExpense, c.Type)
	assert.True(t, c.Amount.Equal(MustAmount("150")))
	assert.Empty(t, c.Bank)
}

func TestCalendarDay(t *testing.T) {
	in := time.Date(2024, 3, 5, 23, 59, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), CalendarDay(in))
}

func TestOptionalString(t *testing.T) {
	assert.Nil(t, OptionalString("  "))
	require.NotNil(t, OptionalString(" HDFC "))
	assert.Equal(t, "HDFC", *OptionalString(" HDFC "))
	assert.Equal(t, "", StringValue(nil))
	assert.Equal(t, "file_abc", FileSourceFor("abc"))
}

func TestPersistedTransactionBuilder(t *testing.T) {
	created := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	tx, err := NewPersistedTransactionBuilder().
		FromCandidate(CandidateTransaction{
			Date:        "01/01/2024",
			Description: "Coffee Shop",
			Amount:      MustAmount("150"),
			Type:        TypeExpense,
		}).
		WithUser("user-1").
		WithDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
		WithAccountType(AccountTypeCreditCard).
		WithUpload("42").
		WithTimestamps(created).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "Coffee Shop", tx.OriginalDescription)
	assert.Equal(t, CategoryOther, tx.Category)
	assert.Nil(t, tx.Bank)
	assert.Nil(t, tx.Time)
	assert.Equal(t, "file_42", tx.FileSource)
	assert.Equal(t, AccountTypeCreditCard, tx.AccountType)
	assert.Equal(t, created, tx.CreatedAt)
}

func TestPersistedTransactionBuilder_Errors(t *testing.T) {
	_, err := NewPersistedTransactionBuilder().WithUser("").Build()
	assert.EqualError(t, err, "user id cannot be empty")

	_, err = NewPersistedTransactionBuilder().
		FromCandidate(CandidateTransaction{Type: "debit"}).
		WithUser("u").
		Build()
	assert.Error(t, err)
}
