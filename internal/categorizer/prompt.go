package categorizer

import (
	"strings"

	"fjacquet/ledger-ingest/internal/models"
)

// SystemInstruction tells the model how to read the statement and which
// categories it may use.
func SystemInstruction(categories models.CategorySet) string {
	var b strings.Builder
	b.WriteString("You are a financial analyst specialized in categorizing bank transactions.\n")
	b.WriteString("You will receive bank statement text and need to extract all transactions.\n")
	b.WriteString("For each transaction, determine if it's a credit or expense.\n\n")
	b.WriteString("Categorize each expense into one of these categories:\n")
	for _, name := range categories.Names() {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nReturn a JSON array. Each element has the fields: date, description, amount, type and category, ")
	b.WriteString("plus original_description, time, bank and account_id when the statement shows them.\n")
	b.WriteString("type must be either \"credit\" or \"expense\". amount is a positive number.\n")
	b.WriteString("IMPORTANT: Keep all dates in DD/MM/YYYY format (Indian format).\n")
	b.WriteString("Your response must be valid, parsable JSON only with no markdown formatting.")
	return b.String()
}

// UserPrompt is the user message for text.
func UserPrompt(text string) string {
	return UserPromptPrefix + text
}
