package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/domain/shared"
	"go.uber.org/zap"
)

// Message is one named message read from the event source
type Message struct {
	Event string
	Data  json.RawMessage
}

// Conn is an open connection to the event source
type Conn interface {
	// Subscribe restricts delivery to the named events
	Subscribe(ctx context.Context, events []string) error
	// Read blocks until the next message arrives or the connection fails
	Read(ctx context.Context) (Message, error)
	// Close is safe to call more than once
	Close() error
}

// Dialer opens connections to the event source
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
	// Endpoint identifies the source in logs
	Endpoint() string
}

// ChannelMetrics records channel activity
type ChannelMetrics interface {
	RecordEventReceived(ctx context.Context, kind notification.Kind)
	RecordReconnect(ctx context.Context)
}

type nopChannelMetrics struct{}

func (nopChannelMetrics) RecordEventReceived(context.Context, notification.Kind) {}
func (nopChannelMetrics) RecordReconnect(context.Context)                        {}

// ErrChannelStarted is returned by Start on a channel that was already started
var ErrChannelStarted = errors.New("event channel already started")

// DefaultSubscriptions are the event names subscribed to on every connect
var DefaultSubscriptions = []string{notification.EventNewOrder}

// Channel is the long-lived push connection feeding the inbox.
//
// Delivery is at-most-once: the channel reconnects after a drop but never replays
// what was sent while it was away.
type Channel struct {
	dialer        Dialer
	subscriptions []string
	logger        *zap.Logger
	metrics       ChannelMetrics
	now           func() time.Time
	newBackOff    func() backoff.BackOff

	events chan notification.Event

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// ChannelOption configures a Channel
type ChannelOption func(*Channel)

// WithSubscriptions overrides the subscribed event names
func WithSubscriptions(events []string) ChannelOption {
	return func(c *Channel) {
		if len(events) > 0 {
			c.subscriptions = append([]string(nil), events...)
		}
	}
}

// WithChannelMetrics sets the metrics recorder
func WithChannelMetrics(m ChannelMetrics) ChannelOption {
	return func(c *Channel) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithReconnectBackOff sets the reconnect policy factory.
// A policy returning backoff.Stop ends the channel.
func WithReconnectBackOff(f func() backoff.BackOff) ChannelOption {
	return func(c *Channel) {
		if f != nil {
			c.newBackOff = f
		}
	}
}

// WithChannelClock overrides the clock used for receivedAt
func WithChannelClock(now func() time.Time) ChannelOption {
	return func(c *Channel) {
		if now != nil {
			c.now = now
		}
	}
}

// NewReconnectBackOff returns an exponential policy that never gives up
func NewReconnectBackOff(initial, max time.Duration) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if initial > 0 {
			b.InitialInterval = initial
		}
		if max > 0 {
			b.MaxInterval = max
		}
		b.MaxElapsedTime = 0
		return b
	}
}

// NewChannel creates a channel; nothing is opened until Start
func NewChannel(dialer Dialer, logger *zap.Logger, opts ...ChannelOption) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Channel{
		dialer:        dialer,
		subscriptions: append([]string(nil), DefaultSubscriptions...),
		logger:        logger,
		metrics:       nopChannelMetrics{},
		now:           time.Now,
		newBackOff:    NewReconnectBackOff(time.Second, 30*time.Second),
		events:        make(chan notification.Event),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events yields received events. It is closed once the channel stops.
func (c *Channel) Events() <-chan notification.Event {
	return c.events
}

// Done is closed once the channel has stopped
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Start opens the connection in the background. A channel runs once.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrChannelStarted
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx)

	c.logger.Info("Event channel started",
		zap.String("endpoint", c.dialer.Endpoint()),
		zap.Strings("subscriptions", c.subscriptions))
	return nil
}

// Close stops the channel and waits for it to release its connection.
// No event is emitted after Close returns.
func (c *Channel) Close() error {
	c.mu.Lock()
	if !c.started {
		c.started = true
		close(c.events)
		close(c.done)
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-c.done
	return nil
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.events)

	bo := c.newBackOff()
	for {
		conn, err := c.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("Event channel connect failed",
				zap.Error(&shared.ChannelError{URL: c.dialer.Endpoint(), Err: err}))
			if !c.wait(ctx, bo) {
				return
			}
			continue
		}

		healthy, err := c.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		if healthy {
			bo.Reset()
		}
		c.logger.Warn("Event channel disconnected",
			zap.Error(&shared.ChannelError{URL: c.dialer.Endpoint(), Err: err}))
		c.metrics.RecordReconnect(ctx)
		if !c.wait(ctx, bo) {
			return
		}
	}
}

// serve subscribes and pumps messages until the connection drops.
// healthy reports whether at least one message was delivered.
func (c *Channel) serve(ctx context.Context, conn Conn) (healthy bool, err error) {
	stop := make(chan struct{})
	defer close(stop)
	defer conn.Close()
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if err := conn.Subscribe(ctx, c.subscriptions); err != nil {
		return false, err
	}
	c.logger.Info("Event channel connected", zap.String("endpoint", c.dialer.Endpoint()))

	for {
		msg, err := conn.Read(ctx)
		if err != nil {
			return healthy, err
		}
		healthy = true

		kind := notification.KindForEvent(msg.Event)
		event := notification.NewEvent(0, kind, msg.Data, c.now())

		c.metrics.RecordEventReceived(ctx, kind)
		select {
		case c.events <- event:
		case <-ctx.Done():
			return healthy, ctx.Err()
		}
	}
}

func (c *Channel) wait(ctx context.Context, bo backoff.BackOff) bool {
	d := bo.NextBackOff()
	if d == backoff.Stop {
		c.logger.Error("Event channel giving up reconnecting", zap.String("endpoint", c.dialer.Endpoint()))
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
