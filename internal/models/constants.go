package models

// Transaction types accepted from the categorization service.
const (
	TypeCredit  TransactionType = "credit"
	TypeExpense TransactionType = "expense"
)

// Account types a statement can be committed under.
const (
	AccountTypeBank       AccountType = "bank_account"
	AccountTypeCreditCard AccountType = "credit_card"
)

// CategoryOther is the catch-all category every category set contains.
const CategoryOther = "Other"

// FileSourcePrefix prefixes the upload id stored on persisted transactions.
const FileSourcePrefix = "file_"

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
