// Package pdfextractor extracts the text of the first pages of a PDF bank
// statement and classifies password-protected documents.
package pdfextractor

import (
	"context"
	"errors"
	"strings"

	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// MaxPages is the number of leading pages read from a statement.
const MaxPages = 4

// PageSeparator joins page texts in the extracted blob.
const PageSeparator = "\n\n"

// Extractor implements extractor.Extractor for PDF files.
type Extractor struct {
	extractor.BaseExtractor
	backend  TextExtractor
	maxPages int
}

// New returns a PDF extractor. A nil backend uses pdftotext from PATH;
// maxPages outside 1..MaxPages is clamped to MaxPages.
func New(logger logging.Logger, backend TextExtractor, maxPages int) *Extractor {
	if backend == nil {
		backend = NewPopplerExtractor("")
	}
	if maxPages <= 0 || maxPages > MaxPages {
		maxPages = MaxPages
	}
	return &Extractor{
		BaseExtractor: extractor.NewBaseExtractor(logger),
		backend:       backend,
		maxPages:      maxPages,
	}
}

// Extract reads at most the configured number of pages. Empty text yields
// empty_pdf, an encrypted document yields password_required and any other
// backend failure yields pdf_parsing_failed.
func (e *Extractor) Extract(ctx context.Context, filePath, password string) models.ExtractionResult {
	logger := e.GetLogger().WithField(logging.FieldFile, filePath)

	pages, err := e.backend.ExtractPages(ctx, filePath, password, e.maxPages)
	if err != nil {
		if isPasswordError(err) {
			return e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodePasswordRequired), err)
		}
		return e.Fail(filePath, models.ExtractionFailureWithMessage(pipelineerror.CodePDFParsingFailed, err.Error()), err)
	}
	if len(pages) > e.maxPages {
		pages = pages[:e.maxPages]
	}

	text := strings.Join(pages, PageSeparator)
	if strings.TrimSpace(text) == "" {
		return e.Fail(filePath, models.ExtractionFailure(pipelineerror.CodeEmptyPDF), nil)
	}

	logger.Debug("Extracted PDF text", logging.Field{Key: logging.FieldPages, Value: len(pages)})
	return models.ExtractionSuccess(text, pages)
}

// IsPasswordProtected probes the first page without a password. It reports
// true only for encryption failures; other failures are returned as errors.
func (e *Extractor) IsPasswordProtected(ctx context.Context, filePath string) (bool, error) {
	_, err := e.backend.ExtractPages(ctx, filePath, "", 1)
	if err == nil {
		return false, nil
	}
	if isPasswordError(err) {
		return true, nil
	}
	return false, err
}

func isPasswordError(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || IsPasswordMessage(err.Error())
}

// SplitPages splits an extracted blob back into pages on PageSeparator.
func SplitPages(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, PageSeparator)
}
