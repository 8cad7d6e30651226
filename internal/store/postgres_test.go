package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when LEDGER_TEST_POSTGRES_DSN points at a disposable database.
func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, dsn, nil)
	require.NoError(t, err)
	defer s.Close()

	userID := "pg-" + uuid.NewString()
	saved, err := s.InsertBatch(ctx, sampleTransactions(userID, time.Now().UTC()))
	require.NoError(t, err)
	require.Len(t, saved, 2)

	listed, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, saved[0].ID, listed[0].ID)
	assert.Equal(t, "150.00", listed[0].Amount.StringFixed(2))
	assert.Equal(t, "file_abc", listed[0].FileSource)
}
