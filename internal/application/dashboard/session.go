// Package dashboard owns the per-session resources of the operator console.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/storefront/console/internal/application/notification"
	"go.uber.org/zap"
)

// ErrSessionClosed is returned by Start on a closed session
var ErrSessionClosed = errors.New("dashboard session closed")

// Session ties the event channel to the inbox for the lifetime of one console session.
// Start loads the inbox and opens the channel; Close releases the channel and stops appends.
type Session struct {
	inbox   *notification.Inbox
	channel *notification.Channel
	logger  *zap.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	pumped  chan struct{}
}

// NewSession creates a session
func NewSession(inbox *notification.Inbox, channel *notification.Channel, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		inbox:   inbox,
		channel: channel,
		logger:  logger,
		pumped:  make(chan struct{}),
	}
}

// Inbox returns the session inbox
func (s *Session) Inbox() *notification.Inbox {
	return s.inbox
}

// Start loads persisted notifications and opens the event channel
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.started {
		return nil
	}

	if err := s.inbox.Load(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := s.channel.Start(runCtx); err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.started = true

	go s.pump(runCtx)

	s.logger.Info("Dashboard session started", zap.Int("notifications", s.inbox.Len()))
	return nil
}

func (s *Session) pump(ctx context.Context) {
	defer close(s.pumped)
	for event := range s.channel.Events() {
		if ctx.Err() != nil {
			continue
		}
		if _, err := s.inbox.Append(ctx, event); err != nil {
			s.logger.Error("Failed to store notification",
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Close stops the event channel and waits until no more events can be appended
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	started := s.started
	cancel := s.cancel
	s.mu.Unlock()

	if !started {
		return s.channel.Close()
	}

	cancel()
	err := s.channel.Close()
	<-s.pumped

	s.logger.Info("Dashboard session closed")
	return err
}
