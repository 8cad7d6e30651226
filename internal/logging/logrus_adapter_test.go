package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "upper-case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &bytes.Buffer{})
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.expectLevel, adapter.Level())

			if tt.format == "json" {
				assert.IsType(t, &logrus.JSONFormatter{}, adapter.logger.Formatter)
			} else {
				assert.IsType(t, &logrus.TextFormatter{}, adapter.logger.Formatter)
			}
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	require.NotNil(t, logger)
	logger.Info("does not panic")
}

func TestLogrusAdapter_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldStage, "extract").
		WithError(errors.New("boom")).
		Info("file processed", Field{Key: FieldFile, Value: "statement.csv"}, Field{Key: FieldCount, Value: 3})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "file processed", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "extract", line[FieldStage])
	assert.Equal(t, "statement.csv", line[FieldFile])
	assert.Equal(t, float64(3), line[FieldCount])
	assert.Equal(t, "boom", line["error"])
}

func TestLogrusAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden")
	logger.Info("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestOrDefault(t *testing.T) {
	mock := NewMockLogger()
	assert.Same(t, mock, OrDefault(mock))
	assert.NotNil(t, OrDefault(nil))
}

func TestMockLogger_ChildrenShareEntries(t *testing.T) {
	root := NewMockLogger()
	child := root.WithField(FieldFile, "a.pdf").WithFields(Field{Key: FieldPages, Value: 2})
	child.Warn("password required")
	root.WithError(errors.New("bad")).Error("failed")

	entries := root.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldFile, Value: "a.pdf"}, {Key: FieldPages, Value: 2}}, entries[0].Fields)
	assert.EqualError(t, entries[1].Error, "bad")
	assert.True(t, root.HasEntry("ERROR", "failed"))
	assert.Len(t, root.EntriesByLevel("WARN"), 1)
}
