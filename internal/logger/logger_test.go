package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/jwebster45206/dialogue-engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Production(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l := Setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)
	WithConversation(l, "abc").Info("Node entered", "node", "A")
	l.Debug("filtered")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "Node entered", rec["msg"])
	assert.Equal(t, "abc", rec["conversation_id"])
	assert.Equal(t, "A", rec["node"])
	assert.Same(t, l, slog.Default())
}

func TestSetup_Development(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l := Setup(&config.Config{Environment: "development", LogLevel: slog.LevelDebug}, &buf)
	WithError(l, errors.New("boom")).Debug("Dice check failed")

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=DEBUG"), out)
	assert.True(t, strings.Contains(out, "error=boom"), out)
}
