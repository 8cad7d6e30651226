package categorizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// ParseResponse validates a raw model answer. The answer must be a JSON
// array of transactions; every type must be credit or expense; categories
// outside the set become Other. Transactions are stably sorted by date.
// Any violation yields invalid_json_response with the raw text preserved.
func ParseResponse(raw string, categories models.CategorySet, logger logging.Logger) Result {
	logger = logging.OrDefault(logger)
	text := stripCodeFence(strings.TrimSpace(raw))

	invalid := func(reason string) Result {
		logger.Warn("Categorization response rejected",
			logging.Field{Key: logging.FieldErrorCode, Value: string(pipelineerror.CodeInvalidJSONResponse)},
			logging.Field{Key: "reason", Value: reason},
			logging.Field{Key: logging.FieldRawResponse, Value: raw})
		return Result{
			Error:       pipelineerror.CodeInvalidJSONResponse,
			Message:     reason,
			RawResponse: raw,
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elements); err != nil {
		if json.Valid([]byte(text)) {
			return invalid("Response is not an array of transactions")
		}
		return invalid(fmt.Sprintf("Response is not valid JSON: %v", err))
	}
	if elements == nil {
		return invalid("Response is not an array of transactions")
	}

	transactions := make([]models.CandidateTransaction, 0, len(elements))
	for i, el := range elements {
		var tx models.CandidateTransaction
		if err := json.Unmarshal(el, &tx); err != nil {
			return invalid(fmt.Sprintf("Transaction %d is malformed: %v", i, err))
		}

		txType, ok := models.ParseTransactionType(string(tx.Type))
		if !ok {
			return invalid(fmt.Sprintf("Transaction %d has invalid type %q", i, tx.Type))
		}
		tx.Type = txType

		category, known := categories.Normalize(tx.Category)
		if !known {
			logger.Warn("Unknown category replaced with Other",
				logging.Field{Key: logging.FieldCategory, Value: tx.Category})
		}
		tx.Category = category
		transactions = append(transactions, tx)
	}

	SortByDate(transactions)
	return Result{Success: true, Transactions: transactions}
}

// SortByDate orders transactions by their parsed date, keeping the model's
// order for equal dates.
func SortByDate(transactions []models.CandidateTransaction) {
	keys := make([]int64, len(transactions))
	for i, tx := range transactions {
		keys[i] = dateutils.ParseDate(tx.Date).Unix()
	}
	idx := make([]int, len(transactions))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })

	sorted := make([]models.CandidateTransaction, len(transactions))
	for i, j := range idx {
		sorted[i] = transactions[j]
	}
	copy(transactions, sorted)
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
