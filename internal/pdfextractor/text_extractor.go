package pdfextractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrPasswordRequired is returned by a TextExtractor when the document is
// encrypted and the password is missing or wrong.
var ErrPasswordRequired = errors.New("pdf is encrypted: password required")

// TextExtractor reads the text of the first maxPages pages of a PDF, one
// string per page.
type TextExtractor interface {
	ExtractPages(ctx context.Context, pdfPath, password string, maxPages int) ([]string, error)
}

// PopplerExtractor implements TextExtractor with poppler's pdftotext.
type PopplerExtractor struct {
	binary string
}

// NewPopplerExtractor uses binary, or "pdftotext" from PATH when empty.
func NewPopplerExtractor(binary string) *PopplerExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	return &PopplerExtractor{binary: binary}
}

// ExtractPages runs pdftotext in layout mode and splits its output on form feeds.
func (e *PopplerExtractor) ExtractPages(ctx context.Context, pdfPath, password string, maxPages int) ([]string, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-f", "1", "-l", strconv.Itoa(maxPages)}
	if password != "" {
		args = append(args, "-upw", password)
	}
	args = append(args, pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...) // #nosec G204 -- binary comes from configuration
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if IsPasswordMessage(msg) {
			return nil, fmt.Errorf("%w: %s", ErrPasswordRequired, msg)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg == "" {
			return nil, fmt.Errorf("error running pdftotext: %w", err)
		}
		return nil, fmt.Errorf("error running pdftotext: %w: %s", err, msg)
	}

	pages := SplitFormFeeds(stdout.String())
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

// IsPasswordMessage reports whether a backend error message means the
// document needs a password.
func IsPasswordMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "password") || strings.Contains(lower, "encrypted")
}

// SplitFormFeeds splits pdftotext output into pages. The form feed that ends
// the last page does not produce an extra page.
func SplitFormFeeds(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\f")
}

// MockTextExtractor returns canned pages or an error. It records the last
// arguments it was called with.
type MockTextExtractor struct {
	Pages []string
	Err   error

	Calls        int
	LastPath     string
	LastPassword string
	LastMaxPages int
}

// NewMockTextExtractor returns a MockTextExtractor.
func NewMockTextExtractor(pages []string, err error) *MockTextExtractor {
	return &MockTextExtractor{Pages: pages, Err: err}
}

// ExtractPages returns the canned data, honoring maxPages like a real backend.
func (m *MockTextExtractor) ExtractPages(_ context.Context, pdfPath, password string, maxPages int) ([]string, error) {
	m.Calls++
	m.LastPath = pdfPath
	m.LastPassword = password
	m.LastMaxPages = maxPages
	if m.Err != nil {
		return nil, m.Err
	}
	pages := m.Pages
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}
