package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "gemini-2.0-flash", config.AI.Model)
	assert.InDelta(t, 0.1, config.AI.Temperature, 1e-6)
	assert.Equal(t, 120, config.AI.TimeoutSeconds)
	assert.Empty(t, config.AI.APIKey)
	assert.Equal(t, 4, config.Extraction.PDFMaxPages)
	assert.Equal(t, "pdftotext", config.Extraction.PdftotextPath)
	assert.Equal(t, 0.8, config.Duplicates.SimilarityThreshold)
	assert.Equal(t, 300, config.Duplicates.RecencyWindowSeconds)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, "data/ledger.db", config.Store.DSN)
	assert.Equal(t, "categories.yaml", config.Categories.File)
	assert.Equal(t, 4, config.Batch.Concurrency)
	assert.Equal(t, "1", config.User.ID)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	testEnvVars := map[string]string{
		"LEDGER_LOG_LEVEL":                         "debug",
		"LEDGER_LOG_FORMAT":                        "json",
		"LEDGER_CSV_DELIMITER":                     ";",
		"LEDGER_AI_MODEL":                          "gemini-1.5-pro",
		"LEDGER_EXTRACTION_PDF_MAX_PAGES":          "2",
		"LEDGER_DUPLICATES_SIMILARITY_THRESHOLD":   "0.9",
		"LEDGER_DUPLICATES_RECENCY_WINDOW_SECONDS": "60",
		"LEDGER_STORE_DRIVER":                      "memory",
		"LEDGER_BATCH_CONCURRENCY":                 "8",
		"GEMINI_API_KEY":                           "test-api-key",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ";", config.CSV.Delimiter)
	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, 2, config.Extraction.PDFMaxPages)
	assert.Equal(t, 0.9, config.Duplicates.SimilarityThreshold)
	assert.Equal(t, 60, config.Duplicates.RecencyWindowSeconds)
	assert.Equal(t, "memory", config.Store.Driver)
	assert.Equal(t, 8, config.Batch.Concurrency)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
}

func TestInitializeConfig_UnprefixedLogLevel(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "warn")

	config, err := InitializeConfig("")
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, logrus.WarnLevel, config.LogLevel())
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "debug"
  format: "json"
ai:
  model: "gemini-1.5-flash"
  timeout_seconds: 30
store:
  driver: "postgres"
  dsn: "postgres://ledger@localhost/ledger"
duplicates:
  similarity_threshold: 0.75
batch:
  concurrency: 2
`
	configPath := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0600))

	t.Run("search path", func(t *testing.T) {
		t.Chdir(tempDir)

		config, err := InitializeConfig("")
		require.NoError(t, err)
		assert.Equal(t, "debug", config.Log.Level)
		assert.Equal(t, "json", config.Log.Format)
		assert.Equal(t, "gemini-1.5-flash", config.AI.Model)
		assert.Equal(t, 30, config.AI.TimeoutSeconds)
		assert.Equal(t, "postgres", config.Store.Driver)
		assert.Equal(t, "postgres://ledger@localhost/ledger", config.Store.DSN)
		assert.Equal(t, 0.75, config.Duplicates.SimilarityThreshold)
		assert.Equal(t, 2, config.Batch.Concurrency)
		// untouched keys keep their defaults
		assert.Equal(t, 4, config.Extraction.PDFMaxPages)
	})

	t.Run("explicit file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		config, err := InitializeConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "postgres", config.Store.Driver)
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := InitializeConfig(filepath.Join(tempDir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	tempDir := t.TempDir()
	configContent := `
log:
  level: "warn"
  format: "text"
csv:
  delimiter: ";"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0600))
	t.Chdir(tempDir)

	t.Setenv("LEDGER_LOG_LEVEL", "error")
	t.Setenv("LEDGER_CSV_DELIMITER", "|")

	config, err := InitializeConfig("")
	require.NoError(t, err)

	// Environment beats file, file beats defaults.
	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, '|', config.Delimiter())
}

func TestInitializeConfig_InvalidFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte("log: [unclosed"), 0600))
	t.Chdir(tempDir)

	_, err := InitializeConfig("")
	assert.Error(t, err)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Log:        LogConfig{Level: "info", Format: "text"},
			CSV:        CSVConfig{Delimiter: ","},
			AI:         AIConfig{Enabled: true, Model: "gemini-2.0-flash", Temperature: 0.1, TimeoutSeconds: 60},
			Extraction: ExtractionConfig{PDFMaxPages: 4, PdftotextPath: "pdftotext"},
			Duplicates: DuplicatesConfig{SimilarityThreshold: 0.8, RecencyWindowSeconds: 300},
			Store:      StoreConfig{Driver: "sqlite", DSN: "ledger.db"},
			Batch:      BatchConfig{Concurrency: 4},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{"valid config", func(*Config) {}, ""},
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"multi-char delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "CSV delimiter must be a single character"},
		{"empty model", func(c *Config) { c.AI.Model = "" }, "ai.model is required"},
		{"empty model with AI disabled", func(c *Config) { c.AI.Enabled = false; c.AI.Model = "" }, ""},
		{"timeout too large", func(c *Config) { c.AI.TimeoutSeconds = 601 }, "ai.timeout_seconds"},
		{"negative temperature", func(c *Config) { c.AI.Temperature = -0.5 }, "ai.temperature"},
		{"too many pages", func(c *Config) { c.Extraction.PDFMaxPages = 5 }, "extraction.pdf_max_pages"},
		{"zero pages", func(c *Config) { c.Extraction.PDFMaxPages = 0 }, "extraction.pdf_max_pages"},
		{"threshold above one", func(c *Config) { c.Duplicates.SimilarityThreshold = 1.5 }, "duplicates.similarity_threshold"},
		{"zero window", func(c *Config) { c.Duplicates.RecencyWindowSeconds = 0 }, "duplicates.recency_window_seconds"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"sqlite without dsn", func(c *Config) { c.Store.DSN = "" }, "store.dsn is required"},
		{"memory without dsn", func(c *Config) { c.Store.Driver = "memory"; c.Store.DSN = "" }, ""},
		{"zero concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfig_LogLevelFallback(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "DEBUG"}}
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel())

	cfg.Log.Level = "bogus"
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel())
}

func TestConfig_DelimiterFallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, ',', cfg.Delimiter())
}

func TestLoadEnv(t *testing.T) {
	t.Run("loads .env from working directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_DOTENV_PROBE=loaded\n"), 0600))
		t.Chdir(dir)
		t.Cleanup(func() { _ = os.Unsetenv("LEDGER_DOTENV_PROBE") })

		file, err := LoadEnv(nil)
		require.NoError(t, err)
		assert.Equal(t, ".env", file)
		assert.Equal(t, "loaded", os.Getenv("LEDGER_DOTENV_PROBE"))
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_DOTENV_KEEP=file\n"), 0600))
		t.Chdir(dir)
		t.Setenv("LEDGER_DOTENV_KEEP", "process")

		_, err := LoadEnv(nil)
		require.NoError(t, err)
		assert.Equal(t, "process", os.Getenv("LEDGER_DOTENV_KEEP"))
	})

	t.Run("no file", func(t *testing.T) {
		parent := t.TempDir()
		child := filepath.Join(parent, "child")
		require.NoError(t, os.Mkdir(child, 0755))
		t.Chdir(child)

		file, err := LoadEnv(nil)
		require.NoError(t, err)
		assert.Empty(t, file)
	})
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LEDGER_GETENV_PROBE", "value")
	assert.Equal(t, "value", GetEnv("LEDGER_GETENV_PROBE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("LEDGER_GETENV_MISSING", "fallback"))
}

func clearTestEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"LEDGER_LOG_LEVEL", "LEDGER_LOG_FORMAT", "LOG_LEVEL",
		"LEDGER_CSV_DELIMITER",
		"LEDGER_AI_ENABLED", "LEDGER_AI_MODEL", "LEDGER_AI_TEMPERATURE",
		"LEDGER_AI_TIMEOUT_SECONDS", "LEDGER_AI_API_KEY", "GEMINI_API_KEY",
		"LEDGER_EXTRACTION_PDF_MAX_PAGES", "LEDGER_EXTRACTION_PDFTOTEXT_PATH",
		"LEDGER_DUPLICATES_SIMILARITY_THRESHOLD", "LEDGER_DUPLICATES_RECENCY_WINDOW_SECONDS",
		"LEDGER_STORE_DRIVER", "LEDGER_STORE_DSN",
		"LEDGER_CATEGORIES_FILE", "LEDGER_BATCH_CONCURRENCY", "LEDGER_USER_ID",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		_ = os.Unsetenv(envVar)
	}
}
