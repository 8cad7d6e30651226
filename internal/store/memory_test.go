package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-ingest/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	saved, err := m.InsertBatch(ctx, sampleTransactions("7", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved[0].ID)
	assert.Equal(t, int64(2), saved[1].ID)

	listed, err := m.ListByUser(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	u := models.NewUpload("7", "a.pdf", 1, time.Now())
	require.NoError(t, m.RecordUpload(ctx, u))
	assert.Error(t, m.RecordUpload(ctx, u))
	require.NoError(t, m.MarkUploadProcessed(ctx, u.ID, 2))
	got, ok := m.Upload(u.ID)
	require.True(t, ok)
	assert.True(t, got.Processed)
	assert.Equal(t, 2, got.TransactionsCount)

	m.ListError = errors.New("boom")
	_, err = m.ListByUser(ctx, "7")
	assert.ErrorContains(t, err, "boom")
}
