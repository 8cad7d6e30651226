package models

// ExportRow is the flat shape of a stored transaction in exports.
type ExportRow struct {
	Date        string `csv:"Date" json:"date"`
	Time        string `csv:"Time" json:"time"`
	Description string `csv:"Description" json:"description"`
	Amount      Amount `csv:"Amount" json:"amount"`
	Type        string `csv:"Type" json:"type"`
	Category    string `csv:"Category" json:"category"`
	AccountType string `csv:"Account Type" json:"accountType"`
	Bank        string `csv:"Bank" json:"bank"`
}

// ExportHeaders lists the export columns in order.
var ExportHeaders = []string{"Date", "Time", "Description", "Amount", "Type", "Category", "Account Type", "Bank"}

// ToExportRow flattens p. Dates are ISO formatted.
func (p PersistedTransaction) ToExportRow() ExportRow {
	return ExportRow{
		Date:        p.CalendarDate().Format("2006-01-02"),
		Time:        StringValue(p.Time),
		Description: p.Description,
		Amount:      p.Amount,
		Type:        string(p.Type),
		Category:    p.Category,
		AccountType: string(p.AccountType),
		Bank:        StringValue(p.Bank),
	}
}

// Cells returns the row values in ExportHeaders order.
func (r ExportRow) Cells() []any {
	return []any{r.Date, r.Time, r.Description, r.Amount.InexactFloat64(), r.Type, r.Category, r.AccountType, r.Bank}
}
