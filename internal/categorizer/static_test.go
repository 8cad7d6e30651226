package categorizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-ingest/internal/pipelineerror"
)

func TestStaticClient(t *testing.T) {
	c := NewStaticClient(`[{"date":"01/01/2024","description":"Coffee Shop","amount":150,"type":"expense","category":"Outside Food"}]`)
	c.TotalTokens = 10

	res := c.Categorize(context.Background(), Request{Text: "t"})
	require.True(t, res.Success)
	assert.Equal(t, 10, res.TotalTokens)
	assert.Len(t, c.Requests(), 1)

	c.FailWith = pipelineerror.CodeQuotaExceeded
	res = c.Categorize(context.Background(), Request{Text: "t"})
	assert.Equal(t, pipelineerror.CodeQuotaExceeded, res.Error)
}

func TestStaticClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewStaticClient("[]").Categorize(ctx, Request{})
	assert.Equal(t, pipelineerror.CodeProcessingFailed, res.Error)
}
