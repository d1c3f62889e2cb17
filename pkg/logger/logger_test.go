package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))

	ctx := ContextWithUser(context.Background(), "garygeeke")
	ctx = ContextWithConnector(ctx, "files-monitor")
	ctx = ContextWithRequestID(ctx, "req-1")

	WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "garygeeke", fields["user_id"])
	assert.Equal(t, "files-monitor", fields["connector"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestFromContextKeepsBase(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core).With(zap.String("component", "server"))

	assert.Same(t, base, FromContext(context.Background(), base))

	ctx := ContextWithRequestID(context.Background(), "req-7")
	assert.Equal(t, "req-7", RequestID(ctx))
	FromContext(ctx, base).Debug("request failed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "server", fields["component"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.NotContains(t, fields, "user_id")
}

func TestGetBuildsDefault(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get())
	assert.NotNil(t, With(zap.String("k", "v")))
}
