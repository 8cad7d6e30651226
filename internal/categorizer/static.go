package categorizer

import (
	"context"
	"sync"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// StaticClient answers every request with a fixed raw response, run through
// ParseResponse like a real model answer. It records the requests it saw.
type StaticClient struct {
	Response    string
	TotalTokens int
	// FailWith, when set, is returned instead of parsing Response.
	FailWith   pipelineerror.Code
	Categories models.CategorySet
	Logger     logging.Logger

	mu       sync.Mutex
	requests []Request
}

// NewStaticClient returns a StaticClient answering raw.
func NewStaticClient(raw string) *StaticClient {
	return &StaticClient{Response: raw, Categories: models.DefaultCategorySet()}
}

// Categorize implements Client.
func (s *StaticClient) Categorize(ctx context.Context, req Request) Result {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Failure(pipelineerror.CodeProcessingFailed, err.Error())
	}
	if s.FailWith != pipelineerror.CodeNone {
		return Failure(s.FailWith, "")
	}
	categories := s.Categories
	if categories.Len() == 0 {
		categories = models.DefaultCategorySet()
	}
	res := ParseResponse(s.Response, categories, s.Logger)
	res.TotalTokens = s.TotalTokens
	return res
}

// Requests returns the requests received so far.
func (s *StaticClient) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}
