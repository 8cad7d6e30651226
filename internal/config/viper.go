// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig controls CSV output.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// AIConfig configures the categorization model.
type AIConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	Model          string  `mapstructure:"model" yaml:"model"`
	Temperature    float32 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey         string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// ExtractionConfig tunes the extractors.
type ExtractionConfig struct {
	PDFMaxPages   int    `mapstructure:"pdf_max_pages" yaml:"pdf_max_pages"`
	PdftotextPath string `mapstructure:"pdftotext_path" yaml:"pdftotext_path"`
}

// DuplicatesConfig tunes duplicate detection.
type DuplicatesConfig struct {
	SimilarityThreshold  float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	RecencyWindowSeconds int     `mapstructure:"recency_window_seconds" yaml:"recency_window_seconds"`
}

// StoreConfig selects the transaction database.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// CategoriesConfig points at the optional category file.
type CategoriesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// BatchConfig bounds directory processing.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// UserConfig holds the default owner of committed transactions.
type UserConfig struct {
	ID string `mapstructure:"id" yaml:"id"`
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	CSV        CSVConfig        `mapstructure:"csv" yaml:"csv"`
	AI         AIConfig         `mapstructure:"ai" yaml:"ai"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Duplicates DuplicatesConfig `mapstructure:"duplicates" yaml:"duplicates"`
	Store      StoreConfig      `mapstructure:"store" yaml:"store"`
	Categories CategoriesConfig `mapstructure:"categories" yaml:"categories"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch"`
	User       UserConfig       `mapstructure:"user" yaml:"user"`
}

// EnvPrefix prefixes every environment override, e.g. LEDGER_STORE_DRIVER.
const EnvPrefix = "LEDGER"

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config file, then environment. configFile overrides the
// search path when set.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ledger-ingest")
		v.AddConfigPath(".ledger-ingest")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// The API key keeps its conventional unprefixed name.
	if err := v.BindEnv("ai.api_key", "LEDGER_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("log.level", "LEDGER_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.timeout_seconds", 120)

	v.SetDefault("extraction.pdf_max_pages", 4)
	v.SetDefault("extraction.pdftotext_path", "pdftotext")

	v.SetDefault("duplicates.similarity_threshold", 0.8)
	v.SetDefault("duplicates.recency_window_seconds", 300)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "data/ledger.db")

	v.SetDefault("categories.file", "categories.yaml")

	v.SetDefault("batch.concurrency", 4)

	v.SetDefault("user.id", "1")
}

var storeDrivers = map[string]bool{"sqlite": true, "postgres": true, "memory": true}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.AI.Enabled {
		if config.AI.Model == "" {
			return fmt.Errorf("ai.model is required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 600 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 600, got: %d", config.AI.TimeoutSeconds)
		}
	}
	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got: %g", config.AI.Temperature)
	}

	if config.Extraction.PDFMaxPages < 1 || config.Extraction.PDFMaxPages > 4 {
		return fmt.Errorf("extraction.pdf_max_pages must be between 1 and 4, got: %d", config.Extraction.PDFMaxPages)
	}

	if config.Duplicates.SimilarityThreshold <= 0 || config.Duplicates.SimilarityThreshold > 1 {
		return fmt.Errorf("duplicates.similarity_threshold must be in (0, 1], got: %f", config.Duplicates.SimilarityThreshold)
	}
	if config.Duplicates.RecencyWindowSeconds < 1 {
		return fmt.Errorf("duplicates.recency_window_seconds must be positive, got: %d", config.Duplicates.RecencyWindowSeconds)
	}

	if !storeDrivers[strings.ToLower(config.Store.Driver)] {
		return fmt.Errorf("store.driver must be sqlite, postgres or memory, got: %s", config.Store.Driver)
	}
	if config.Store.Driver != "memory" && config.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %s", config.Store.Driver)
	}

	if config.Batch.Concurrency < 1 || config.Batch.Concurrency > 64 {
		return fmt.Errorf("batch.concurrency must be between 1 and 64, got: %d", config.Batch.Concurrency)
	}

	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSV.Delimiter {
		return r
	}
	return ','
}
