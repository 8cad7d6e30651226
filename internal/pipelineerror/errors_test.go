package pipelineerror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeMessages(t *testing.T) {
	for _, c := range AllCodes() {
		t.Run(string(c), func(t *testing.T) {
			assert.True(t, c.Valid())
			assert.NotEmpty(t, c.Message())
		})
	}
	assert.False(t, Code("nope").Valid())
	assert.Empty(t, CodeNone.Message())
}

func TestExtractionError(t *testing.T) {
	inner := errors.New("unexpected EOF")
	err := &ExtractionError{Code: CodePDFParsingFailed, FilePath: "/tmp/a.pdf", Err: inner}

	assert.Equal(t, "extraction of '/tmp/a.pdf' failed (pdf_parsing_failed): unexpected EOF", err.Error())
	assert.True(t, errors.Is(err, inner))

	bare := &ExtractionError{Code: CodeEmptyCSV, FilePath: "x.csv"}
	assert.Equal(t, "extraction of 'x.csv' failed (empty_csv)", bare.Error())
}

func TestCategorizationError(t *testing.T) {
	err := &CategorizationError{Code: CodeInvalidJSONResponse, RawResponse: "{}", Err: errors.New("not an array")}
	assert.Equal(t, "categorization failed (invalid_json_response): not an array", err.Error())
	assert.Equal(t, "not an array", errors.Unwrap(err).Error())
}

func TestDateParseError(t *testing.T) {
	err := &DateParseError{Value: "31-31-31"}
	assert.Equal(t, "failed to parse date '31-31-31'", err.Error())
}

func TestStoreError(t *testing.T) {
	inner := errors.New("disk full")
	err := &StoreError{Op: "insert batch", Driver: "sqlite", Err: inner}
	assert.Equal(t, "sqlite store: insert batch: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "nil", err: nil, want: CodeNone},
		{name: "extraction", err: &ExtractionError{Code: CodeEmptyExcel}, want: CodeEmptyExcel},
		{name: "wrapped extraction", err: fmt.Errorf("outer: %w", &ExtractionError{Code: CodePasswordRequired}), want: CodePasswordRequired},
		{name: "categorization", err: &CategorizationError{Code: CodeQuotaExceeded}, want: CodeQuotaExceeded},
		{name: "plain", err: errors.New("x"), want: CodeProcessingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
