package telemetry

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/domain/order"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics type is built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// ConsoleMetrics records the console's business metrics: status changes,
// stock classification mismatches, event channel activity and remote calls.
type ConsoleMetrics struct {
	statusChanges   *Counter
	stockMismatches *Counter
	eventsReceived  *Counter
	reconnects      *Counter
	remoteCalls     *Counter
	remoteDuration  *Histogram
}

// NewConsoleMetrics creates the console instruments on the given meter.
func NewConsoleMetrics(meter metric.Meter) (*ConsoleMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   ConsoleMetrics
		err error
	)

	m.statusChanges, err = NewCounter(meter,
		"console_order_status_changes_total",
		"Order status change requests by outcome",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	m.stockMismatches, err = NewCounter(meter,
		"console_stock_mismatches_total",
		"Listed products whose effective status disagrees with the listing",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	m.eventsReceived, err = NewCounter(meter,
		"console_notifications_received_total",
		"Events received from the event channel",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	m.reconnects, err = NewCounter(meter,
		"console_event_channel_reconnects_total",
		"Event channel reconnect attempts",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	m.remoteCalls, err = NewCounter(meter,
		"console_remote_requests_total",
		"Requests sent to the retail API",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	m.remoteDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "console_remote_request_duration_seconds",
		Description: "Retail API request latency",
		Unit:        "s",
		Boundaries:  RemoteDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordStatusChange counts one status change request.
func (m *ConsoleMetrics) RecordStatusChange(ctx context.Context, from, to order.Status, outcome string) {
	m.statusChanges.Inc(ctx,
		AttrFromStatus.String(from.String()),
		AttrToStatus.String(to.String()),
		AttrOutcome.String(outcome),
	)
}

// RecordStockMismatch counts products a listing returned under the wrong status.
func (m *ConsoleMetrics) RecordStockMismatch(ctx context.Context, listing string, count int) {
	if count <= 0 {
		return
	}
	m.stockMismatches.Add(ctx, int64(count), AttrListing.String(listing))
}

// RecordEventReceived counts one event delivered by the event channel.
func (m *ConsoleMetrics) RecordEventReceived(ctx context.Context, kind notification.Kind) {
	m.eventsReceived.Inc(ctx, AttrEventKind.String(string(kind)))
}

// RecordReconnect counts one reconnect attempt.
func (m *ConsoleMetrics) RecordReconnect(ctx context.Context) {
	m.reconnects.Inc(ctx)
}

// RecordRemoteCall records one retail API request. status is 0 when no
// response was received.
func (m *ConsoleMetrics) RecordRemoteCall(ctx context.Context, route string, status int, d time.Duration) {
	attrs := []attribute.KeyValue{
		AttrRemoteRoute.String(route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	}
	m.remoteCalls.Inc(ctx, attrs...)
	m.remoteDuration.RecordDuration(ctx, d, AttrRemoteRoute.String(route))
}
