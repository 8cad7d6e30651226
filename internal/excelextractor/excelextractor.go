// Package excelextractor turns the first worksheet of an XLS or XLSX bank
// statement into one "Key: value" line per transaction row.
package excelextractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// Extractor implements extractor.Extractor for spreadsheets.
type Extractor struct {
	extractor.BaseExtractor
	readers map[extractor.Kind]workbookReader
}

// New returns a spreadsheet extractor.
func New(logger logging.Logger) *Extractor {
	return &Extractor{
		BaseExtractor: extractor.NewBaseExtractor(logger),
		readers: map[extractor.Kind]workbookReader{
			extractor.KindXLSX: readXLSX,
			extractor.KindXLS:  readXLS,
		},
	}
}

// Extract reads the first worksheet of filePath. password only applies to
// encrypted XLSX workbooks.
func (e *Extractor) Extract(ctx context.Context, filePath, password string) (result models.ExtractionResult) {
	kind := extractor.KindOf(filePath)
	read, ok := e.readers[kind]
	if !ok {
		return e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodeUnsupportedFormat), nil)
	}

	defer func() {
		if r := recover(); r != nil {
			result = e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodeExcelParsingFailed), fmt.Errorf("panic reading workbook: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return e.Fail(filePath, models.ExtractionFailureWithMessage(pipelineerror.CodeProcessingFailed, err.Error()), err)
	}

	book, err := read(filePath, password)
	if err != nil {
		if errors.Is(err, excelize.ErrWorkbookPassword) {
			return e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodePasswordRequired), err)
		}
		return e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodeExcelParsingFailed), err)
	}

	res, err := rowsToText(book)
	if !res.OK() {
		return e.Fail(filePath, res, err)
	}
	e.GetLogger().Debug("Extracted worksheet rows",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldKind, Value: string(kind)},
		logging.Field{Key: logging.FieldCount, Value: strings.Count(res.Data, "\n") + 1})
	return res
}

// rowsToText uses the first non-blank row as the header and renders every
// later non-blank row, leaving empty cells out.
func rowsToText(book workbook) (models.ExtractionResult, error) {
	if book.sheetCount == 0 {
		return models.ExtractionFailure(pipelineerror.CodeNoSheetsFound), nil
	}

	var headers []string
	var lines []string
	for _, row := range book.rows {
		if common.IsBlankRow(row) {
			continue
		}
		if headers == nil {
			headers = row
			continue
		}
		if line := common.FormatCells(headers, row); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return models.ExtractionFailure(pipelineerror.CodeEmptyExcel), nil
	}
	if report := common.ValidateHeaders(headers); !report.Valid() {
		return models.ExtractionFailure(pipelineerror.CodeInvalidExcelFormat),
			fmt.Errorf("missing columns: %s", strings.Join(report.Missing(), ", "))
	}
	return models.ExtractionSuccess(strings.Join(lines, "\n"), nil), nil
}
