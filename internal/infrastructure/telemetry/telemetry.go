// Package telemetry provides OpenTelemetry integration for metrics, traces and logs.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/console/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

// Config selects which signals are exported and where they go.
// All three signals share one OTLP gRPC collector.
type Config struct {
	ServiceName       string
	ServiceVersion    string
	CollectorEndpoint string
	Insecure          bool

	Traces        bool
	SamplingRatio float64

	Metrics        bool
	MetricInterval time.Duration // Default: 60s

	Logs bool
}

// FromConfig maps the [telemetry] section onto a Config.
// Traces and logs follow telemetry.enabled; metrics have their own switch.
func FromConfig(cfg config.TelemetryConfig, version string) Config {
	return Config{
		ServiceName:       cfg.ServiceName,
		ServiceVersion:    version,
		CollectorEndpoint: cfg.CollectorEndpoint,
		Insecure:          cfg.Insecure,
		Traces:            cfg.Enabled,
		SamplingRatio:     cfg.SamplingRatio,
		Metrics:           cfg.MetricsEnabled,
		Logs:              cfg.Enabled,
	}
}

// Providers bundles the three signal providers of one process.
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider
}

// Setup creates the log, trace and metric providers and installs them globally.
// If one fails, the ones already created are shut down.
func Setup(ctx context.Context, cfg Config, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	if p.Logs, err = NewLoggerProvider(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if p.Tracer, err = NewTracerProvider(ctx, cfg, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, cfg, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

// ZapCore returns the zap core that forwards to the log provider.
func (p *Providers) ZapCore(level zapcore.Level) zapcore.Core {
	return p.Logs.ZapCore(level)
}

// Shutdown flushes and stops every provider, tracer first.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func newResource(cfg Config) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownSignal stops one SDK provider. A nil stop means the signal was disabled.
func shutdownSignal(ctx context.Context, signal string, stop func(context.Context) error, logger *zap.Logger) error {
	if stop == nil {
		logger.Debug("Signal disabled, nothing to shut down", zap.String("signal", signal))
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := stop(shutdownCtx); err != nil {
		logger.Error("Error shutting down provider", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	logger.Info("OpenTelemetry provider shutdown complete", zap.String("signal", signal))
	return nil
}
