package categorizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(text string, tokens int32) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
		}},
		UsageMetadata: &genai.UsageMetadata{TotalTokenCount: tokens},
	}
}

func newTestClient(gen contentGenerator) *GeminiClient {
	return &GeminiClient{
		generator:  gen,
		modelName:  "test-model",
		categories: models.DefaultCategorySet(),
		logger:     logging.NewMockLogger(),
	}
}

func TestGeminiClient_Categorize(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(
		`[{"date":"01/01/2024","description":"Coffee Shop","amount":150,"type":"expense","category":"Outside Food"}]`, 512)}
	c := newTestClient(gen)

	res := c.Categorize(context.Background(), Request{Text: "Date: 01/01/2024, Description: Coffee Shop, Amount: 150"})

	require.True(t, res.Success)
	assert.Equal(t, 512, res.TotalTokens)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Coffee Shop", res.Transactions[0].Description)

	require.Len(t, gen.parts, 1)
	assert.Equal(t, genai.Text(UserPromptPrefix+"Date: 01/01/2024, Description: Coffee Shop, Amount: 150"), gen.parts[0])
}

func TestGeminiClient_InvalidJSONKeepsTokens(t *testing.T) {
	c := newTestClient(&fakeGenerator{resp: textResponse(`{"oops":true}`, 42)})

	res := c.Categorize(context.Background(), Request{Text: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, pipelineerror.CodeInvalidJSONResponse, res.Error)
	assert.Equal(t, `{"oops":true}`, res.RawResponse)
	assert.Equal(t, 42, res.TotalTokens)
}

func TestGeminiClient_EmptyResponse(t *testing.T) {
	c := newTestClient(&fakeGenerator{resp: &genai.GenerateContentResponse{}})
	res := c.Categorize(context.Background(), Request{Text: "x"})
	assert.Equal(t, pipelineerror.CodeInvalidJSONResponse, res.Error)
}

func TestGeminiClient_APIErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pipelineerror.Code
	}{
		{name: "quota", err: &googleapi.Error{Code: http.StatusTooManyRequests}, want: pipelineerror.CodeQuotaExceeded},
		{name: "bad key", err: fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusForbidden}), want: pipelineerror.CodeInvalidCredentials},
		{name: "network", err: errors.New("dial tcp: connection refused"), want: pipelineerror.CodeProcessingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeGenerator{err: tt.err})
			res := c.Categorize(context.Background(), Request{Text: "x"})
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestGeminiClient_MissingCredentials(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), GeminiConfig{}, models.CategorySet{}, logging.NewMockLogger())
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	res := c.Categorize(context.Background(), Request{Text: "x"})
	assert.Equal(t, pipelineerror.CodeMissingCredentials, res.Error)
	assert.Equal(t, DefaultModel, c.modelName)
	assert.Equal(t, models.DefaultCategorySet().Len(), c.categories.Len())
}

type deadlineGenerator struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineGenerator) GenerateContent(ctx context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	d.deadline, d.ok = ctx.Deadline()
	return textResponse("[]", 1), nil
}

func TestGeminiClient_RequestTimeout(t *testing.T) {
	gen := &deadlineGenerator{}
	c := newTestClient(gen)
	c.timeout = time.Minute

	c.Categorize(context.Background(), Request{Text: "x"})
	require.True(t, gen.ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), gen.deadline, 5*time.Second)

	c.timeout = 0
	c.Categorize(context.Background(), Request{Text: "x"})
	assert.False(t, gen.ok)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		msg  string
		want pipelineerror.Code
	}{
		{"googleapi: Error 429: Resource has been exhausted (e.g. check quota). RESOURCE_EXHAUSTED", pipelineerror.CodeQuotaExceeded},
		{"rpc error: code = InvalidArgument desc = API key not valid. Please pass a valid API key.", pipelineerror.CodeInvalidCredentials},
		{"reason: API_KEY_INVALID", pipelineerror.CodeInvalidCredentials},
		{"PERMISSION_DENIED", pipelineerror.CodeInvalidCredentials},
		{"context deadline exceeded", pipelineerror.CodeProcessingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(errors.New(tt.msg)))
		})
	}
	assert.Equal(t, pipelineerror.CodeNone, ClassifyError(nil))
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("[1,"), genai.Text("2]")}}},
		{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
	}}
	assert.Equal(t, "[1,2]", responseText(resp))
	assert.Equal(t, "", responseText(nil))
}
