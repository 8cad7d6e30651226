// Package extractor defines the contract shared by the statement extractors
// and decides which extractor a file belongs to.
package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// Kind is the statement file format, derived from the extension.
type Kind string

const (
	KindUnknown Kind = ""
	KindPDF     Kind = "pdf"
	KindCSV     Kind = "csv"
	KindXLS     Kind = "xls"
	KindXLSX    Kind = "xlsx"
)

// SupportedKinds lists the accepted formats.
var SupportedKinds = []Kind{KindPDF, KindCSV, KindXLS, KindXLSX}

// Extractor turns one statement file into text. Implementations never panic
// on malformed input and report failures through the result's error code.
// password is only meaningful for PDFs.
type Extractor interface {
	Extract(ctx context.Context, filePath, password string) models.ExtractionResult
}

// KindOf returns the kind for filename by its lowercase extension.
func KindOf(filename string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, k := range SupportedKinds {
		if string(k) == ext {
			return k
		}
	}
	return KindUnknown
}

// IsSupported reports whether filename has an accepted extension.
func IsSupported(filename string) bool {
	return KindOf(filename) != KindUnknown
}

// IsSpreadsheet reports whether k is handled by the Excel extractor.
func (k Kind) IsSpreadsheet() bool {
	return k == KindXLS || k == KindXLSX
}

// BaseExtractor carries the logger every extractor embeds.
type BaseExtractor struct {
	logger logging.Logger
}

// NewBaseExtractor returns a BaseExtractor using logger, or the default
// logger when nil.
func NewBaseExtractor(logger logging.Logger) BaseExtractor {
	return BaseExtractor{logger: logging.OrDefault(logger)}
}

// SetLogger replaces the logger. Nil is ignored.
func (b *BaseExtractor) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *BaseExtractor) GetLogger() logging.Logger {
	if b.logger == nil {
		return logging.GetLogger()
	}
	return b.logger
}

// Fail logs the failure at warn level and returns a tagged result.
func (b *BaseExtractor) Fail(filePath string, result models.ExtractionResult, err error) models.ExtractionResult {
	logger := b.GetLogger()
	if err != nil {
		logger = logger.WithError(err)
	}
	logger.Warn("Extraction failed",
		logging.Field{Key: logging.FieldFile, Value: filePath},
		logging.Field{Key: logging.FieldErrorCode, Value: string(result.Err)})
	return result
}
