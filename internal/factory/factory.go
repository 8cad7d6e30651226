// Package factory builds the extractor for each statement format and routes
// files to them.
package factory

import (
	"context"
	"fmt"
	"os"

	"fjacquet/ledger-ingest/internal/csvextractor"
	"fjacquet/ledger-ingest/internal/excelextractor"
	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pdfextractor"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// Options tune the extractors built by NewDispatcher.
type Options struct {
	// PDFBackend overrides the pdftotext backend.
	PDFBackend pdfextractor.TextExtractor
	// PDFMaxPages defaults to pdfextractor.MaxPages.
	PDFMaxPages int
}

// GetExtractor returns a new extractor for kind.
func GetExtractor(kind extractor.Kind, logger logging.Logger, opts Options) (extractor.Extractor, error) {
	switch kind {
	case extractor.KindPDF:
		return pdfextractor.New(logger, opts.PDFBackend, opts.PDFMaxPages), nil
	case extractor.KindCSV:
		return csvextractor.New(logger), nil
	case extractor.KindXLS, extractor.KindXLSX:
		return excelextractor.New(logger), nil
	default:
		return nil, fmt.Errorf("unknown file kind: %q", kind)
	}
}

// Dispatcher routes a file to the extractor matching its extension.
type Dispatcher struct {
	logger     logging.Logger
	pdf        *pdfextractor.Extractor
	extractors map[extractor.Kind]extractor.Extractor
}

// NewDispatcher builds one extractor per supported kind.
func NewDispatcher(logger logging.Logger, opts Options) *Dispatcher {
	logger = logging.OrDefault(logger)
	pdf := pdfextractor.New(logger, opts.PDFBackend, opts.PDFMaxPages)
	excel := excelextractor.New(logger)
	return &Dispatcher{
		logger: logger,
		pdf:    pdf,
		extractors: map[extractor.Kind]extractor.Extractor{
			extractor.KindPDF:  pdf,
			extractor.KindCSV:  csvextractor.New(logger),
			extractor.KindXLS:  excel,
			extractor.KindXLSX: excel,
		},
	}
}

// Dispatch extracts filePath. It never panics: unsupported extensions give
// unsupported_format, unreadable files and panics give processing_failed.
func (d *Dispatcher) Dispatch(ctx context.Context, filePath, password string) (result models.ExtractionResult) {
	logger := d.logger.WithField(logging.FieldFile, filePath)

	kind := extractor.KindOf(filePath)
	ext, ok := d.extractors[kind]
	if !ok {
		logger.Warn("Unsupported file format")
		return models.ExtractionFailure(pipelineerror.CodeUnsupportedFormat)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Extractor panicked", logging.Field{Key: logging.FieldKind, Value: string(kind)})
			result = models.ExtractionFailureWithMessage(pipelineerror.CodeProcessingFailed, fmt.Sprintf("%v", r))
		}
	}()

	if _, err := os.Stat(filePath); err != nil {
		logger.WithError(err).Warn("Cannot read statement file")
		return models.ExtractionFailureWithMessage(pipelineerror.CodeProcessingFailed, err.Error())
	}

	logger.Info("Extracting statement", logging.Field{Key: logging.FieldKind, Value: string(kind)})
	return ext.Extract(ctx, filePath, password)
}

// IsPasswordProtected probes a PDF for encryption. Other kinds are never
// reported as protected.
func (d *Dispatcher) IsPasswordProtected(ctx context.Context, filePath string) (bool, error) {
	if extractor.KindOf(filePath) != extractor.KindPDF {
		return false, nil
	}
	return d.pdf.IsPasswordProtected(ctx, filePath)
}
