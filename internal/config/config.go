package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"fjacquet/ledger-ingest/internal/logging"
)

// LoadEnv loads a .env file from the working directory or its parent into
// the process environment. Variables already set are not overwritten.
// It returns the file it loaded, or "" when none was found.
func LoadEnv(logger logging.Logger) (string, error) {
	logger = logging.OrDefault(logger)

	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(envFile); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if err := godotenv.Load(envFile); err != nil {
			logger.WithError(err).Warn("Error loading .env file",
				logging.Field{Key: logging.FieldFile, Value: envFile})
			return "", err
		}
		logger.Debug("Loaded environment variables",
			logging.Field{Key: logging.FieldFile, Value: envFile})
		return envFile, nil
	}

	logger.Debug("No .env file found, using environment variables")
	return "", nil
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
