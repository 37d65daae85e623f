package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func newRecordingProvider(t *testing.T) (*LoggerProvider, *recordingExporter) {
	t.Helper()
	exporter := &recordingExporter{}
	lp := &LoggerProvider{
		provider:    sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		serviceName: "console",
		logger:      zaptest.NewLogger(t),
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exporter
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := NewLoggerProvider(ctx, Config{ServiceName: "console", Metrics: true}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Nil(t, lp.provider)
	assert.NoError(t, lp.Shutdown(ctx))
	assert.False(t, lp.ZapCore(zapcore.DebugLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_ZapCore_Nil(t *testing.T) {
	var lp *LoggerProvider
	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_ZapCore_ForwardsAtLevel(t *testing.T) {
	lp, exporter := newRecordingProvider(t)

	log := zap.New(lp.ZapCore(zapcore.WarnLevel)).With(zap.String("component", "inbox"))
	log.Info("Notification appended")
	log.Warn("Discarding unreadable notifications")

	assert.Equal(t, []string{"Discarding unreadable notifications"}, exporter.bodies())
}

func TestLoggerProvider_ZapCore_DebugForwardsEverything(t *testing.T) {
	lp, exporter := newRecordingProvider(t)

	log := zap.New(lp.ZapCore(zapcore.DebugLevel))
	log.Debug("Frame received")
	log.Info("Event channel connected")

	assert.Equal(t, []string{"Frame received", "Event channel connected"}, exporter.bodies())
}
