package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := NewMeterProvider(ctx, Config{ServiceName: "console", Traces: true}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Nil(t, mp.provider)
	assert.NotNil(t, mp.Meter("console"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics, match attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(match.Key); ok && v == match.Value {
			total += dp.Value
		}
	}
	return total
}

func newTestMetrics(t *testing.T) (*ConsoleMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewConsoleMetrics(provider.Meter("console-test"))
	require.NoError(t, err)
	return m, reader
}

func TestNewConsoleMetrics_NilMeter(t *testing.T) {
	_, err := NewConsoleMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestConsoleMetrics_StatusChanges(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStatusChange(ctx, order.StatusShipped, order.StatusDelivered, "accepted")
	m.RecordStatusChange(ctx, order.StatusProcessing, order.StatusDelivered, "rejected")
	m.RecordStatusChange(ctx, order.StatusProcessing, order.StatusDelivered, "rejected")

	got := collect(t, reader)["console_order_status_changes_total"]
	assert.Equal(t, int64(1), sumOf(t, got, AttrOutcome.String("accepted")))
	assert.Equal(t, int64(2), sumOf(t, got, AttrOutcome.String("rejected")))
}

func TestConsoleMetrics_StockMismatches(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordStockMismatch(ctx, "low_stock", 3)
	m.RecordStockMismatch(ctx, "low_stock", 0)
	m.RecordStockMismatch(ctx, "out_of_stock", 1)

	got := collect(t, reader)["console_stock_mismatches_total"]
	assert.Equal(t, int64(3), sumOf(t, got, AttrListing.String("low_stock")))
	assert.Equal(t, int64(1), sumOf(t, got, AttrListing.String("out_of_stock")))
}

func TestConsoleMetrics_ChannelActivity(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEventReceived(ctx, notification.KindNewOrder)
	m.RecordEventReceived(ctx, notification.KindNewOrder)
	m.RecordReconnect(ctx)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["console_notifications_received_total"], AttrEventKind.String("new_order")))

	reconnects, ok := got["console_event_channel_reconnects_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, reconnects.DataPoints, 1)
	assert.Equal(t, int64(1), reconnects.DataPoints[0].Value)
}

func TestConsoleMetrics_RemoteCalls(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordRemoteCall(context.Background(), "GET /orders/:id", 200, 120*time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, got["console_remote_requests_total"], AttrRemoteRoute.String("GET /orders/:id")))

	hist, ok := got["console_remote_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}
