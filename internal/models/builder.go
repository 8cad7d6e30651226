package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PersistedTransactionBuilder turns a CandidateTransaction into the record
// that is written to the store, applying the commit defaults.
type PersistedTransactionBuilder struct {
	tx  PersistedTransaction
	err error
}

// NewPersistedTransactionBuilder starts a builder with zero amount, the
// catch-all category and a bank account type.
func NewPersistedTransactionBuilder() *PersistedTransactionBuilder {
	return &PersistedTransactionBuilder{
		tx: PersistedTransaction{
			Amount:      Amount{Decimal: decimal.Zero},
			Category:    CategoryOther,
			AccountType: AccountTypeBank,
		},
	}
}

// FromCandidate copies the candidate fields. original_description falls
// back to description and blank optional fields become null.
func (b *PersistedTransactionBuilder) FromCandidate(c CandidateTransaction) *PersistedTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Description = c.Description
	b.tx.OriginalDescription = c.OriginalDescription
	if strings.TrimSpace(b.tx.OriginalDescription) == "" {
		b.tx.OriginalDescription = c.Description
	}
	b.tx.Time = OptionalString(c.Time)
	b.tx.User = OptionalString(c.User)
	b.tx.Bank = OptionalString(c.Bank)
	b.tx.AccountID = OptionalString(c.AccountID)
	b.tx.Amount = c.Amount
	b.tx.Type = c.Type
	if strings.TrimSpace(c.Category) != "" {
		b.tx.Category = c.Category
	}
	return b
}

// WithUser sets the owning user.
func (b *PersistedTransactionBuilder) WithUser(userID string) *PersistedTransactionBuilder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(userID) == "" {
		b.err = errors.New("user id cannot be empty")
		return b
	}
	b.tx.UserID = userID
	return b
}

// WithDate sets the normalized transaction date.
func (b *PersistedTransactionBuilder) WithDate(date time.Time) *PersistedTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Date = CalendarDay(date)
	return b
}

// WithAccountType sets the account type.
func (b *PersistedTransactionBuilder) WithAccountType(accountType AccountType) *PersistedTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.AccountType = accountType
	return b
}

// WithUpload tags the record with the upload it came from.
func (b *PersistedTransactionBuilder) WithUpload(uploadID string) *PersistedTransactionBuilder {
	if b.err != nil || uploadID == "" {
		return b
	}
	b.tx.FileSource = FileSourceFor(uploadID)
	return b
}

// WithTimestamps sets created/updated times.
func (b *PersistedTransactionBuilder) WithTimestamps(at time.Time) *PersistedTransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.CreatedAt = at
	b.tx.UpdatedAt = at
	return b
}

// Build validates and returns the transaction.
func (b *PersistedTransactionBuilder) Build() (PersistedTransaction, error) {
	if b.err != nil {
		return PersistedTransaction{}, b.err
	}
	if b.tx.UserID == "" {
		return PersistedTransaction{}, errors.New("user id is required")
	}
	if !b.tx.Type.Valid() {
		return PersistedTransaction{}, errors.New("transaction type must be credit or expense")
	}
	return b.tx, nil
}
