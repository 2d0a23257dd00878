package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(VerbosityQuiet))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(VerbosityInfo))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(VerbosityDebug))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, VerbosityInfo, false)
	log.Debug("hidden")
	log.Info("sheet opened", zap.String("sheet", "Branches"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "sheet opened")
	assert.Contains(t, out, `"sheet": "Branches"`)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, VerbosityDebug, true)
	log.Debug("extraction started", zap.Int("from_row", 2))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "extraction started", entry["msg"])
	assert.Equal(t, 2.0, entry["from_row"])
}
