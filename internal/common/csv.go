package common

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fjacquet/ledger-ingest/internal/fileutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// Delimiter is the output CSV separator.
var Delimiter rune = ','

// SetDelimiter changes the output CSV separator.
func SetDelimiter(delim rune) {
	Delimiter = delim
}

// WriteTransactionsCSV writes categorized transactions as CSV to w.
func WriteTransactionsCSV(transactions []models.CandidateTransaction, w io.Writer) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(transactions, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSV writes categorized transactions to csvFile,
// creating parent directories as needed.
func WriteTransactionsToCSV(transactions []models.CandidateTransaction, csvFile string, logger logging.Logger) error {
	logger = logging.OrDefault(logger)

	file, err := fileutils.CreateFile(csvFile)
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactionsCSV(transactions, file); err != nil {
		logger.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	logger.Info("Wrote transactions to CSV file",
		logging.Field{Key: logging.FieldOutputFile, Value: csvFile},
		logging.Field{Key: logging.FieldCount, Value: len(transactions)})
	return nil
}

// ReadTransactionsCSV reads transactions written by WriteTransactionsCSV.
// Lines starting with '#' are skipped.
func ReadTransactionsCSV(r io.Reader) ([]models.CandidateTransaction, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = Delimiter
	csvReader.Comment = '#'
	var rows []models.CandidateTransaction
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV data: %w", err)
	}
	return rows, nil
}
