// Package pipelineerror defines the closed set of failure codes returned by the
// ingestion pipeline and the typed errors that carry them.
package pipelineerror

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure tag. The zero value means "no error".
type Code string

const (
	CodeNone                Code = ""
	CodeUnsupportedFormat   Code = "unsupported_format"
	CodeEmptyFile           Code = "empty_file"
	CodeEmptyCSV            Code = "empty_csv"
	CodeInvalidCSVFormat    Code = "invalid_csv_format"
	CodeInvalidExcelFormat  Code = "invalid_excel_format"
	CodeNoSheetsFound       Code = "no_sheets_found"
	CodeEmptyExcel          Code = "empty_excel"
	CodeExcelParsingFailed  Code = "excel_parsing_failed"
	CodeEmptyPDF            Code = "empty_pdf"
	CodePasswordRequired    Code = "password_required"
	CodePDFParsingFailed    Code = "pdf_parsing_failed"
	CodeMissingCredentials  Code = "missing_credentials"
	CodeQuotaExceeded       Code = "quota_exceeded"
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeInvalidJSONResponse Code = "invalid_json_response"
	CodeProcessingFailed    Code = "processing_failed"
)

var messages = map[Code]string{
	CodeUnsupportedFormat:   "Unsupported file format. Please upload a PDF, CSV, XLS or XLSX file.",
	CodeEmptyFile:           "The uploaded file is empty.",
	CodeEmptyCSV:            "No valid data found in CSV file.",
	CodeInvalidCSVFormat:    "CSV file must contain date, description and amount columns.",
	CodeInvalidExcelFormat:  "Excel file must contain date, description and amount columns.",
	CodeNoSheetsFound:       "No worksheets found in Excel file.",
	CodeEmptyExcel:          "No valid data found in Excel file.",
	CodeExcelParsingFailed:  "Failed to parse Excel file.",
	CodeEmptyPDF:            "No text could be extracted from the PDF. Scanned documents are not supported.",
	CodePasswordRequired:    "This PDF is password protected. Please provide the password.",
	CodePDFParsingFailed:    "Failed to parse PDF file.",
	CodeMissingCredentials:  "AI service credentials are not configured.",
	CodeQuotaExceeded:       "AI service quota exceeded. Please try again later.",
	CodeInvalidCredentials:  "AI service credentials are invalid.",
	CodeInvalidJSONResponse: "AI service returned a response that is not a valid transaction list.",
	CodeProcessingFailed:    "Failed to process the statement.",
}

// AllCodes lists every non-empty code in declaration order.
func AllCodes() []Code {
	return []Code{
		CodeUnsupportedFormat, CodeEmptyFile, CodeEmptyCSV, CodeInvalidCSVFormat,
		CodeInvalidExcelFormat, CodeNoSheetsFound, CodeEmptyExcel, CodeExcelParsingFailed,
		CodeEmptyPDF, CodePasswordRequired, CodePDFParsingFailed, CodeMissingCredentials,
		CodeQuotaExceeded, CodeInvalidCredentials, CodeInvalidJSONResponse, CodeProcessingFailed,
	}
}

// Message returns the human-readable message for c.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return ""
}

// Valid reports whether c is one of the known codes.
func (c Code) Valid() bool {
	_, ok := messages[c]
	return ok
}

func (c Code) String() string { return string(c) }

// ExtractionError is returned when a statement file cannot be turned into text.
type ExtractionError struct {
	Code     Code
	FilePath string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction of '%s' failed (%s): %v", e.FilePath, e.Code, e.Err)
	}
	return fmt.Sprintf("extraction of '%s' failed (%s)", e.FilePath, e.Code)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// CategorizationError is returned when the categorization service fails or
// answers with something that is not a transaction list.
type CategorizationError struct {
	Code        Code
	RawResponse string
	Err         error
}

func (e *CategorizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("categorization failed (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("categorization failed (%s)", e.Code)
}

func (e *CategorizationError) Unwrap() error {
	return e.Err
}

// DateParseError reports a date string that matches none of the accepted shapes.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse date '%s': %v", e.Value, e.Err)
	}
	return fmt.Sprintf("failed to parse date '%s'", e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure with the operation that caused it.
type StoreError struct {
	Op     string
	Driver string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Driver, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the failure code carried by err. Errors without a code map to
// processing_failed; a nil error maps to CodeNone.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Code
	}
	var catErr *CategorizationError
	if errors.As(err, &catErr) {
		return catErr.Code
	}
	return CodeProcessingFailed
}
