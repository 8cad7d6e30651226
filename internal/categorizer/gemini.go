package categorizer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// DefaultTemperature keeps answers close to deterministic.
const DefaultTemperature = 0.1

// GeminiConfig configures GeminiClient.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	// Timeout bounds each request; zero means no limit beyond ctx.
	Timeout time.Duration
}

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements Client with the Google Gemini API.
type GeminiClient struct {
	client     *genai.Client
	generator  contentGenerator
	modelName  string
	timeout    time.Duration
	categories models.CategorySet
	logger     logging.Logger
}

// NewGeminiClient creates the client. Without an API key the client is still
// returned, and every call answers missing_credentials.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, categories models.CategorySet, logger logging.Logger) (*GeminiClient, error) {
	logger = logging.OrDefault(logger)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if categories.Len() == 0 {
		categories = models.DefaultCategorySet()
	}

	c := &GeminiClient{modelName: cfg.Model, timeout: cfg.Timeout, categories: categories, logger: logger}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logger.Warn("Gemini API key not configured, categorization is unavailable")
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemInstruction(categories))}}

	c.client = client
	c.generator = model
	return c, nil
}

// Categorize sends one request and validates the answer. There is no retry.
func (c *GeminiClient) Categorize(ctx context.Context, req Request) Result {
	if c.generator == nil {
		return Failure(pipelineerror.CodeMissingCredentials, "")
	}

	logger := c.logger.WithField(logging.FieldModel, c.modelName)
	logger.Info("Sending statement text for categorization")
	start := time.Now()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.generator.GenerateContent(ctx, genai.Text(UserPrompt(req.Input())))
	if err != nil {
		code := ClassifyError(err)
		logger.WithError(err).Error("Categorization request failed",
			logging.Field{Key: logging.FieldErrorCode, Value: string(code)})
		msg := code.Message()
		if code == pipelineerror.CodeProcessingFailed {
			msg = err.Error()
		}
		return Failure(code, msg)
	}

	raw := responseText(resp)
	result := ParseResponse(raw, c.categories, logger)
	if resp.UsageMetadata != nil {
		result.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	logger.Info("Categorization response received",
		logging.Field{Key: logging.FieldCount, Value: len(result.Transactions)},
		logging.Field{Key: logging.FieldTokens, Value: result.TotalTokens},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return result
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	return b.String()
}

// ClassifyError maps a Gemini API failure to a pipeline error code.
func ClassifyError(err error) pipelineerror.Code {
	if err == nil {
		return pipelineerror.CodeNone
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return pipelineerror.CodeQuotaExceeded
		case http.StatusUnauthorized, http.StatusForbidden:
			return pipelineerror.CodeInvalidCredentials
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(strings.ToLower(msg), "quota"):
		return pipelineerror.CodeQuotaExceeded
	case strings.Contains(msg, "API_KEY_INVALID"),
		strings.Contains(msg, "API key not valid"),
		strings.Contains(msg, "PERMISSION_DENIED"),
		strings.Contains(msg, "UNAUTHENTICATED"):
		return pipelineerror.CodeInvalidCredentials
	}
	return pipelineerror.CodeProcessingFailed
}
