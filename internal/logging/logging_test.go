package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/config"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("bogus"))
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Warn("save failed", "path", "/tmp/x.dat")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN save failed")
	assert.Contains(t, out, "path=/tmp/x.dat")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNew_TextAttrsAndGroups(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "debug"}, &buf)

	log.With("component", "gateway").WithGroup("store").Error("boom", "err", "disk full")

	out := buf.String()
	assert.Contains(t, out, "ERR boom")
	assert.Contains(t, out, "component=gateway")
	assert.Contains(t, out, `store.err="disk full"`)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	log.Info("loaded", "items", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "loaded", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.EqualValues(t, 3, rec["items"])
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
