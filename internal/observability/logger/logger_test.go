package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(nil, Config{Level: "loud", Output: "stderr"})
	assert.Error(t, err)
}

func TestNewWritesToConfiguredOutput(t *testing.T) {
	log, err := New(nil, Config{ServiceName: "pike", Level: "debug", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	again, sameID := EnsureRequestID(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, id, RequestIDFromContext(again))
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := WithTool(WithRequestID(context.Background(), "req-1"), "list-sites")
	WithContext(ctx, base).Info("handled")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "list-sites", fields["tool"])
	assert.Equal(t, "", fields["trace_id"])
}
