package factory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/factory"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pdfextractor"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

func TestGetExtractor(t *testing.T) {
	for _, kind := range extractor.SupportedKinds {
		t.Run(string(kind), func(t *testing.T) {
			ext, err := factory.GetExtractor(kind, logging.NewMockLogger(), factory.Options{})
			require.NoError(t, err)
			assert.NotNil(t, ext)
		})
	}
	_, err := factory.GetExtractor(extractor.KindUnknown, nil, factory.Options{})
	assert.Error(t, err)
}

func TestDispatch_Unsupported(t *testing.T) {
	d := factory.NewDispatcher(logging.NewMockLogger(), factory.Options{})
	res := d.Dispatch(context.Background(), "notes.txt", "")
	assert.Equal(t, pipelineerror.CodeUnsupportedFormat, res.Err)
	assert.False(t, res.RequiresPassword)
}

func TestDispatch_MissingFile(t *testing.T) {
	d := factory.NewDispatcher(nil, factory.Options{})
	res := d.Dispatch(context.Background(), filepath.Join(t.TempDir(), "gone.csv"), "")
	assert.Equal(t, pipelineerror.CodeProcessingFailed, res.Err)
	assert.NotEmpty(t, res.Message)
}

func TestDispatch_RoutesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "a.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("Date,Description,Amount\n01/01/2024,Coffee Shop,150\n"), 0600))
	pdfPath := filepath.Join(dir, "b.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0600))

	backend := pdfextractor.NewMockTextExtractor([]string{"page one", "page two"}, nil)
	d := factory.NewDispatcher(nil, factory.Options{PDFBackend: backend})

	csvRes := d.Dispatch(context.Background(), csvPath, "")
	require.True(t, csvRes.OK())
	assert.Equal(t, "Date: 01/01/2024, Description: Coffee Shop, Amount: 150", csvRes.Data)

	pdfRes := d.Dispatch(context.Background(), pdfPath, "pw")
	require.True(t, pdfRes.OK())
	assert.Equal(t, []string{"page one", "page two"}, pdfRes.Pages)
	assert.Equal(t, "pw", backend.LastPassword)
}

func TestDispatch_RecoversFromPanic(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "boom.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF"), 0600))

	d := factory.NewDispatcher(nil, factory.Options{PDFBackend: panicBackend{}})
	var res models.ExtractionResult
	assert.NotPanics(t, func() { res = d.Dispatch(context.Background(), pdfPath, "") })
	assert.Equal(t, pipelineerror.CodeProcessingFailed, res.Err)
	assert.Equal(t, "backend exploded", res.Message)
}

func TestIsPasswordProtected(t *testing.T) {
	d := factory.NewDispatcher(nil, factory.Options{
		PDFBackend: pdfextractor.NewMockTextExtractor(nil, pdfextractor.ErrPasswordRequired),
	})

	protected, err := d.IsPasswordProtected(context.Background(), "locked.pdf")
	require.NoError(t, err)
	assert.True(t, protected)

	protected, err = d.IsPasswordProtected(context.Background(), "plain.csv")
	require.NoError(t, err)
	assert.False(t, protected)
}

func TestIsPasswordProtected_BackendError(t *testing.T) {
	d := factory.NewDispatcher(nil, factory.Options{
		PDFBackend: pdfextractor.NewMockTextExtractor(nil, errors.New("not a pdf")),
	})
	_, err := d.IsPasswordProtected(context.Background(), "x.pdf")
	assert.Error(t, err)
}

type panicBackend struct{}

func (panicBackend) ExtractPages(context.Context, string, string, int) ([]string, error) {
	panic("backend exploded")
}
