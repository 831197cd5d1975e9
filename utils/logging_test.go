package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Json(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json")

	logger.Warn("mail rejected", "workspace_id", "ws-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "mail rejected", line["message"])
	assert.Equal(t, "WARNING", line["severity"])
	assert.Equal(t, "ws-1", line["workspace_id"])
	assert.NotContains(t, line, "msg")
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text").With("user_id", "u-1")

	logger.Debug("token redeemed", "purpose", "invite")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "token redeemed")
	assert.Contains(t, out, "user_id=u-1")
	assert.Contains(t, out, "purpose=invite")
	assert.NotContains(t, out, "msg=")
}

func TestLoggerFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), LoggerFromContext(context.Background()))

	logger := newLogger(&bytes.Buffer{}, "json")
	ctx := StoreLoggerInContext(context.Background(), logger)
	assert.Same(t, logger, LoggerFromContext(ctx))
}
