package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCorrelationID(ctx))

	ctx = SetCorrelationID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetCorrelationID(ctx))
}

func TestNewHandler_JSON(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, LogConfig{
		ServiceName: "libris",
		MaskFields:  []string{"password", "Code"},
	}, nil))
	ctx := SetCorrelationID(context.Background(), "cid-1")

	// Act
	logger.InfoContext(ctx, "login attempt",
		"username", "alice",
		"password", "P@ss1234567!",
		"body", map[string]any{"code": "482913", "username": "alice"},
	)

	// Assert
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "login attempt", got["msg"])
	assert.Equal(t, "INFO", got["severity"])
	assert.Equal(t, "cid-1", got["_cID"])
	assert.Equal(t, "libris", got["service"])
	assert.Equal(t, "***", got["password"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, map[string]any{"code": "***", "username": "alice"}, got["body"])
	assert.Contains(t, got, "ts")
}

func TestNewHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, LogConfig{Level: "warn"}, nil))

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, LogConfig{Format: "text", MaskFields: []string{"password"}}, nil))

	logger.Info("hello", "password", "secret")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "secret")
}

func TestMaskJSON(t *testing.T) {
	keys := LowerSet([]string{"token"})

	out, ok := MaskJSON([]byte(`{"token":"abc","nested":[{"token":"x"}]}`), keys)
	require.True(t, ok)
	assert.JSONEq(t, `{"token":"***","nested":[{"token":"***"}]}`, out)

	_, ok = MaskJSON([]byte("plain text"), keys)
	assert.False(t, ok)
}

func TestNew_Disabled(t *testing.T) {
	ins, err := New(context.Background(), &Config{Enabled: false, ServiceName: "libris"})
	require.NoError(t, err)

	_, span := ins.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.NoError(t, ins.Shutdown(context.Background()))
}
