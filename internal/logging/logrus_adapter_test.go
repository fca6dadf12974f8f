package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonLines decodes every JSON log line written to buf.
func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogrusAdapterWithOutput_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"debug", "info", "warning", "error"}},
		{"info", []string{"info", "warning", "error"}},
		{"warn", []string{"warning", "error"}},
		{"error", []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(&buf, tt.level, "json")

			logger.Debug("poll")
			logger.Info("poll")
			logger.Warn("poll")
			logger.Error("poll")

			var got []string
			for _, entry := range jsonLines(t, &buf) {
				got = append(got, entry["level"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogrusAdapterWithOutput_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput(&buf, "chatty", "json")
	buf.Reset()

	logger.Debug("hidden")
	logger.Info("shown")

	entries := jsonLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestNewLogrusAdapterWithOutput_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput(&buf, "info", "text")

	logger.Info("Record added", F(FieldRecordID, "r-1"), F(FieldKind, "expense"))

	out := buf.String()
	assert.Contains(t, out, `msg="Record added"`)
	assert.Contains(t, out, "record_id=r-1")
	assert.Contains(t, out, "kind=expense")
}

func TestLogrusAdapter_LedgerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput(&buf, "debug", "json").
		WithField(FieldComponent, "account")

	logger.Info("Record updated", F(FieldRecordID, "r-7"))
	logger.WithFields(F(FieldOperation, "add_record"), F(FieldAmount, 12.5)).
		WithError(errors.New("disk full")).
		Warn("Mutation applied but not persisted")

	entries := jsonLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "account", entries[0][FieldComponent])
	assert.Equal(t, "r-7", entries[0][FieldRecordID])
	assert.NotContains(t, entries[0], FieldOperation)

	assert.Equal(t, "account", entries[1][FieldComponent])
	assert.Equal(t, "add_record", entries[1][FieldOperation])
	assert.Equal(t, 12.5, entries[1][FieldAmount])
	assert.Equal(t, "disk full", entries[1][logrus.ErrorKey])
}

func TestNewLogrusAdapterFromLogger_SharesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.WarnLevel)

	logger := NewLogrusAdapterFromLogger(base)
	logger.Info("dropped")
	base.SetLevel(logrus.InfoLevel)
	logger.Info("kept", F(FieldCount, 3))

	entries := jsonLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0]["msg"])
	assert.Equal(t, 3.0, entries[0][FieldCount])

	assert.NotNil(t, NewLogrusAdapterFromLogger(nil))
}

func TestNop(t *testing.T) {
	logger := Nop().WithField(FieldComponent, "reminder").WithError(errors.New("x"))
	assert.NotPanics(t, func() { logger.Error("ignored", F(FieldKind, "warn")) })
}
