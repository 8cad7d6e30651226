// Package csvextractor turns a CSV bank statement into one "Key: value" line
// per transaction row.
package csvextractor

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// Extractor implements extractor.Extractor for CSV files.
type Extractor struct {
	extractor.BaseExtractor
}

// New returns a CSV extractor.
func New(logger logging.Logger) *Extractor {
	return &Extractor{BaseExtractor: extractor.NewBaseExtractor(logger)}
}

// Extract reads filePath. The password is ignored.
func (e *Extractor) Extract(ctx context.Context, filePath, _ string) models.ExtractionResult {
	file, err := os.Open(filePath) // #nosec G304 -- path chosen by the caller
	if err != nil {
		return e.Fail(filePath, models.ExtractionFailureWithMessage(pipelineerror.CodeProcessingFailed, err.Error()), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e.GetLogger().WithError(err).Warn("Failed to close CSV file",
				logging.Field{Key: logging.FieldFile, Value: filePath})
		}
	}()

	res, err := e.ExtractReader(ctx, file)
	if err != nil || !res.OK() {
		return e.Fail(filePath, res, err)
	}
	e.GetLogger().Debug("Extracted CSV rows",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldCount, Value: strings.Count(res.Data, "\n") + 1})
	return res
}

type fold struct {
	headers []string
	lines   []string
}

// ExtractReader runs the extraction over an already opened stream. The
// returned error, when set, is the underlying cause of a failed result.
func (e *Extractor) ExtractReader(ctx context.Context, r io.Reader) (models.ExtractionResult, error) {
	var acc fold
	for record, err := range Rows(r) {
		if err != nil {
			return models.ExtractionFailureWithMessage(rowErrorCode(err), err.Error()), err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.ExtractionFailureWithMessage(pipelineerror.CodeProcessingFailed, ctxErr.Error()), ctxErr
		}

		if acc.headers == nil {
			acc.headers = record
			if report := common.ValidateHeaders(record); !report.Valid() {
				return models.ExtractionFailure(pipelineerror.CodeInvalidCSVFormat),
					fmt.Errorf("missing columns: %s", strings.Join(report.Missing(), ", "))
			}
			continue
		}
		acc.lines = append(acc.lines, common.FormatRow(acc.headers, record))
	}

	if acc.headers == nil {
		return models.ExtractionFailure(pipelineerror.CodeEmptyFile), nil
	}
	if len(acc.lines) == 0 {
		return models.ExtractionFailure(pipelineerror.CodeEmptyCSV), nil
	}
	return models.ExtractionSuccess(strings.Join(acc.lines, "\n"), nil), nil
}

// rowErrorCode reports malformed CSV as invalid_csv_format and any other read
// failure as processing_failed.
func rowErrorCode(err error) pipelineerror.Code {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return pipelineerror.CodeInvalidCSVFormat
	}
	return pipelineerror.CodeProcessingFailed
}
