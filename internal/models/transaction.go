// Package models provides the data structures shared by the extraction,
// categorization, persistence and duplicate detection stages.
package models

import (
	"strings"
	"time"
)

// TransactionType tells money coming in from money going out.
type TransactionType string

// Valid reports whether t is credit or expense.
func (t TransactionType) Valid() bool {
	return t == TypeCredit || t == TypeExpense
}

// ParseTransactionType normalizes case and surrounding blanks. The second
// return value is false for anything other than credit or expense.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// AccountType is the kind of account a statement belongs to.
type AccountType string

// ParseAccountType maps free-form input to an AccountType, defaulting to a
// bank account like the upload form does.
func ParseAccountType(s string) AccountType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit_card", "credit-card", "creditcard", "card":
		return AccountTypeCreditCard
	default:
		return AccountTypeBank
	}
}

// CandidateTransaction is one record proposed by the categorization service,
// before it is normalized and stored. Date is DD/MM/YYYY.
type CandidateTransaction struct {
	Date                string          `json:"date" csv:"date"`
	Time                string          `json:"time,omitempty" csv:"time"`
	User                string          `json:"user,omitempty" csv:"user"`
	Description         string          `json:"description" csv:"description"`
	OriginalDescription string          `json:"original_description,omitempty" csv:"original_description"`
	Amount              Amount          `json:"amount" csv:"amount"`
	Type                TransactionType `json:"type" csv:"type"`
	Category            string          `json:"category" csv:"category"`
	Bank                string          `json:"bank,omitempty" csv:"bank"`
	AccountID           string          `json:"account_id,omitempty" csv:"account_id"`
}

// PersistedTransaction is a stored transaction owned by a user.
type PersistedTransaction struct {
	ID                  int64           `json:"id"`
	UserID              string          `json:"userId"`
	Date                time.Time       `json:"date"`
	Time                *string         `json:"time"`
	User                *string         `json:"user"`
	Description         string          `json:"description"`
	OriginalDescription string          `json:"originalDescription"`
	Amount              Amount          `json:"amount"`
	Type                TransactionType `json:"type"`
	Category            string          `json:"category"`
	Bank                *string         `json:"bank"`
	AccountID           *string         `json:"accountId"`
	AccountType         AccountType     `json:"accountType"`
	FileSource          string          `json:"fileSource"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// CalendarDate returns the transaction date truncated to a UTC day.
func (p PersistedTransaction) CalendarDate() time.Time {
	return CalendarDay(p.Date)
}

// CalendarDay truncates t to midnight UTC of the same calendar day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FileSourceFor builds the file source tag stored with each transaction of an upload.
func FileSourceFor(uploadID string) string {
	return FileSourcePrefix + uploadID
}

// OptionalString returns nil for blank strings.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
