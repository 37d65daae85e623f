package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/console/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.TelemetryConfig{
		Enabled:           true,
		MetricsEnabled:    false,
		CollectorEndpoint: "otel:4317",
		SamplingRatio:     0.5,
		ServiceName:       "storefront-console",
		Insecure:          true,
	}, "1.4.2")

	assert.Equal(t, Config{
		ServiceName:       "storefront-console",
		ServiceVersion:    "1.4.2",
		CollectorEndpoint: "otel:4317",
		Insecure:          true,
		Traces:            true,
		SamplingRatio:     0.5,
		Metrics:           false,
		Logs:              true,
	}, cfg)
}

func TestSetup_AllDisabled(t *testing.T) {
	ctx := context.Background()

	p, err := Setup(ctx, Config{ServiceName: "console"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Meter)
	require.NotNil(t, p.Logs)

	assert.False(t, p.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestProviders_Shutdown_Partial(t *testing.T) {
	p := &Providers{Logs: &LoggerProvider{logger: zap.NewNop()}}
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestShutdownSignal(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	ctx := context.Background()

	assert.NoError(t, shutdownSignal(ctx, "traces", nil, log))

	boom := errors.New("exporter unreachable")
	err := shutdownSignal(ctx, "metrics", func(context.Context) error { return boom }, log)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "metrics")

	require.NoError(t, shutdownSignal(ctx, "logs", func(context.Context) error { return nil }, log))
	assert.Equal(t, 1, logs.FilterMessage("Error shutting down provider").Len())
	assert.Equal(t, 1, logs.FilterMessage("OpenTelemetry provider shutdown complete").Len())
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "console"})
	require.NoError(t, err)

	name, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "console", name.AsString())

	version, ok := res.Set().Value(attribute.Key("service.version"))
	require.True(t, ok)
	assert.Equal(t, "dev", version.AsString())
}
