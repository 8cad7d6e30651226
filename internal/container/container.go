// Package container provides dependency injection for the ledger-ingest application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/ledger-ingest/internal/batch"
	"fjacquet/ledger-ingest/internal/categorizer"
	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/config"
	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/duplicates"
	"fjacquet/ledger-ingest/internal/factory"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pdfextractor"
	"fjacquet/ledger-ingest/internal/pipeline"
	"fjacquet/ledger-ingest/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: fields are private and only
// reachable through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	categories  *store.CategoryStore
	categorySet models.CategorySet
	aiClient    categorizer.Client
	closeAI     func() error
	txStore     store.TransactionStore
	dispatcher  *factory.Dispatcher
	service     *pipeline.Service
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	logger     logging.Logger
	aiClient   categorizer.Client
	pdfBackend pdfextractor.TextExtractor
	clock      func() time.Time
}

// WithLogger replaces the logger built from the log config.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAIClient replaces the Gemini client.
func WithAIClient(c categorizer.Client) Option {
	return func(o *options) { o.aiClient = c }
}

// WithPDFBackend replaces the pdftotext backend.
func WithPDFBackend(b pdfextractor.TextExtractor) Option {
	return func(o *options) { o.pdfBackend = b }
}

// WithClock sets the time source used when committing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// NewContainer creates and wires all application dependencies.
// The caller must Close the container to release the store and the AI client.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	}
	logging.SetDefault(logger)
	dateutils.SetLogger(logger)
	common.SetDelimiter(cfg.Delimiter())

	categoryStore := store.NewCategoryStore(cfg.Categories.File, logger)
	categorySet, err := categoryStore.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	c := &Container{
		logger:      logger,
		config:      cfg,
		categories:  categoryStore,
		categorySet: categorySet,
	}

	switch {
	case o.aiClient != nil:
		c.aiClient = o.aiClient
	case cfg.AI.Enabled:
		gemini, err := categorizer.NewGeminiClient(ctx, categorizer.GeminiConfig{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, categorySet, logger)
		if err != nil {
			return nil, err
		}
		c.aiClient = gemini
		c.closeAI = gemini.Close
	default:
		logger.Info("AI categorization disabled")
	}

	txStore, err := store.Open(ctx, store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN}, logger)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to open transaction store: %w", err)
	}
	c.txStore = txStore

	backend := o.pdfBackend
	if backend == nil {
		backend = pdfextractor.NewPopplerExtractor(cfg.Extraction.PdftotextPath)
	}
	c.dispatcher = factory.NewDispatcher(logger, factory.Options{
		PDFBackend:  backend,
		PDFMaxPages: cfg.Extraction.PDFMaxPages,
	})

	serviceOpts := []pipeline.Option{
		pipeline.WithDuplicateOptions(duplicates.Options{
			SimilarityThreshold: cfg.Duplicates.SimilarityThreshold,
			RecencyWindow:       time.Duration(cfg.Duplicates.RecencyWindowSeconds) * time.Second,
		}),
	}
	if o.clock != nil {
		serviceOpts = append(serviceOpts, pipeline.WithClock(o.clock))
	}
	// A nil client makes every categorization answer missing_credentials.
	c.service = pipeline.NewService(c.dispatcher, c.aiClient, txStore, logger, serviceOpts...)

	logger.Info("Container initialized successfully",
		logging.Field{Key: logging.FieldStoreDriver, Value: cfg.Store.Driver},
		logging.Field{Key: "ai_enabled", Value: c.aiClient != nil},
		logging.Field{Key: "categories_count", Value: categorySet.Len()})

	return c, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetService returns the pipeline service.
func (c *Container) GetService() *pipeline.Service {
	return c.service
}

// GetStore returns the transaction store.
func (c *Container) GetStore() store.TransactionStore {
	return c.txStore
}

// GetCategoryStore returns the category file store.
func (c *Container) GetCategoryStore() *store.CategoryStore {
	return c.categories
}

// GetCategories returns the categories loaded at startup.
func (c *Container) GetCategories() models.CategorySet {
	return c.categorySet
}

// GetAIClient returns the categorization client, or nil when AI is disabled.
func (c *Container) GetAIClient() categorizer.Client {
	return c.aiClient
}

// NewBatchRunner returns a runner over the pipeline service. A zero
// concurrency uses the configured value.
func (c *Container) NewBatchRunner(opts batch.Options) *batch.Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = c.config.Batch.Concurrency
	}
	return batch.NewRunner(c.service, opts, c.logger)
}

// Close releases the transaction store and the AI client.
func (c *Container) Close() error {
	var errs []error
	if c.txStore != nil {
		errs = append(errs, c.txStore.Close())
	}
	if c.closeAI != nil {
		errs = append(errs, c.closeAI())
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
