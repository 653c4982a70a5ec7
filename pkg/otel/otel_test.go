package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSetup_DisabledWithoutCollector(t *testing.T) {
	shutdown, err := Setup(context.Background(), zaptest.NewLogger(t), "credit-risk-api", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := GetTracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestSetup_WithCollector(t *testing.T) {
	// The exporter connects lazily, so an unreachable collector does not fail setup.
	shutdown, err := Setup(context.Background(), zaptest.NewLogger(t), "credit-risk-api", "127.0.0.1:1")
	require.NoError(t, err)
	t.Cleanup(func() { tracer = nil })

	_, span := GetTracer().Start(context.Background(), "model.predict")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
