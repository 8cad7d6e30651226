// Package batch runs every statement in a directory through the pipeline
// and consolidates the categorized transactions.
package batch

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"fjacquet/ledger-ingest/internal/categorizer"
	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// Aggregator consolidates the transactions categorized from several files.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logging.OrDefault(logger)}
}

// Aggregate merges the transactions of every successful result in date
// order. Potential duplicates across files are logged but kept.
func (a *Aggregator) Aggregate(results []FileResult) []models.CandidateTransaction {
	var all []models.CandidateTransaction
	var sourceFiles []string

	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		all = append(all, r.Outcome.Transactions...)
		sourceFiles = append(sourceFiles, filepath.Base(r.File))
	}

	categorizer.SortByDate(all)
	a.detectAndLogDuplicates(all)

	a.logger.Info("Aggregated batch transactions",
		logging.Field{Key: logging.FieldCount, Value: len(all)},
		logging.Field{Key: "source_files", Value: strings.Join(sourceFiles, ", ")})
	return all
}

// detectAndLogDuplicates warns about transactions sharing date, amount,
// type and description.
func (a *Aggregator) detectAndLogDuplicates(transactions []models.CandidateTransaction) {
	duplicateCount := 0
	for i := 0; i < len(transactions)-1; i++ {
		for j := i + 1; j < len(transactions); j++ {
			if arePotentialDuplicates(transactions[i], transactions[j]) {
				duplicateCount++
				a.logger.Warn("Potential duplicate transaction",
					logging.Field{Key: logging.FieldDate, Value: transactions[i].Date},
					logging.Field{Key: "amount", Value: transactions[i].Amount.String()},
					logging.Field{Key: "description", Value: transactions[i].Description})
				break
			}
		}
	}

	if duplicateCount > 0 {
		a.logger.Warn("Found potential duplicate transactions",
			logging.Field{Key: logging.FieldCount, Value: duplicateCount})
	}
}

func arePotentialDuplicates(tx1, tx2 models.CandidateTransaction) bool {
	if !dateutils.SameDay(dateutils.ParseDate(tx1.Date), dateutils.ParseDate(tx2.Date)) {
		return false
	}
	if !tx1.Amount.Equal(tx2.Amount) || tx1.Type != tx2.Type {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(tx1.Description), strings.TrimSpace(tx2.Description))
}

// DateRangeOf returns the span of the transactions' dates. Dates that do
// not parse are ignored.
func DateRangeOf(transactions []models.CandidateTransaction) DateRange {
	var dr DateRange
	for _, tx := range transactions {
		d := dateutils.ParseDate(tx.Date)
		if dateutils.IsSentinel(d) {
			continue
		}
		dr = dr.Merge(DateRange{Start: d, End: d})
	}
	return dr
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// OutputFilename names a consolidated file: {prefix}_{start}_{end}.csv, or
// {prefix}.csv without a date range.
func OutputFilename(prefix string, dateRange DateRange) string {
	prefix = strings.Trim(unsafeChars.ReplaceAllString(prefix, "_"), "_")
	if prefix == "" {
		prefix = "transactions"
	}
	if s := dateRange.String(); s != "" {
		return fmt.Sprintf("%s_%s.csv", prefix, s)
	}
	return prefix + ".csv"
}

// SourceFileHeader creates a header comment listing source files
func SourceFileHeader(sourceFiles []string, generatedAt time.Time) string {
	if len(sourceFiles) == 0 {
		return ""
	}

	var header strings.Builder
	header.WriteString("# Consolidated from source files:\n")
	for _, file := range sourceFiles {
		header.WriteString(fmt.Sprintf("# - %s\n", file))
	}
	header.WriteString("# Generated on: ")
	header.WriteString(generatedAt.Format("2006-01-02 15:04:05"))
	header.WriteString("\n#\n")

	return header.String()
}
