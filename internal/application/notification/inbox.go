package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/console/internal/domain/notification"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ChangeOp names an inbox mutation
type ChangeOp string

const (
	ChangeAppended ChangeOp = "appended"
	ChangeRemoved  ChangeOp = "removed"
	ChangeCleared  ChangeOp = "cleared"
)

// Change describes one inbox mutation to subscribers
type Change struct {
	Op    ChangeOp            `json:"op"`
	Event *notification.Event `json:"event,omitempty"`
	ID    uuid.UUID           `json:"id"`
	Len   int                 `json:"len"`
}

const subscriberBuffer = 16

// Inbox is the durable list of received notifications, newest first.
//
// Every mutation rewrites the whole collection under one key. A mutation whose
// write fails is undone in memory so the list never runs ahead of storage.
type Inbox struct {
	mu     sync.Mutex
	store  notification.Store
	key    string
	logger *zap.Logger
	now    func() time.Time

	events []notification.Event
	seq    uint64

	subMu   sync.Mutex
	subs    map[int]chan Change
	nextSub int
}

// InboxOption configures an Inbox
type InboxOption func(*Inbox)

// WithStorageKey overrides the key the inbox is persisted under
func WithStorageKey(key string) InboxOption {
	return func(i *Inbox) {
		if key != "" {
			i.key = key
		}
	}
}

// WithClock overrides the clock used for receivedAt
func WithClock(now func() time.Time) InboxOption {
	return func(i *Inbox) {
		if now != nil {
			i.now = now
		}
	}
}

// NewInbox creates an empty inbox; call Load to read persisted events
func NewInbox(store notification.Store, logger *zap.Logger, opts ...InboxOption) *Inbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	i := &Inbox{
		store:  store,
		key:    notification.DefaultStorageKey,
		logger: logger,
		now:    time.Now,
		events: []notification.Event{},
		subs:   make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Key returns the storage key
func (i *Inbox) Key() string {
	return i.key
}

// Load replaces the in-memory list with the persisted one.
// Malformed stored data is discarded and the key reset; only storage failures are returned.
func (i *Inbox) Load(ctx context.Context) error {
	raw, ok, err := i.store.Get(ctx, i.key)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !ok || len(raw) == 0 {
		i.events = []notification.Event{}
		i.seq = 0
		return nil
	}

	var events []notification.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		perr := &shared.ParseError{Key: i.key, Err: err}
		logger.Ctx(ctx, i.logger).Warn("Discarding unreadable notifications", zap.Error(perr))
		if derr := i.store.Delete(ctx, i.key); derr != nil {
			logger.Ctx(ctx, i.logger).Error("Failed to reset notifications", zap.String("key", i.key), zap.Error(derr))
		}
		i.events = []notification.Event{}
		i.seq = 0
		return nil
	}

	var maxSeq uint64
	for _, e := range events {
		if e.Seq > maxSeq {
			maxSeq = e.Seq
		}
	}
	// records written before ids existed get one on load, oldest first
	for idx := len(events) - 1; idx >= 0; idx-- {
		if events[idx].ID == uuid.Nil {
			events[idx].ID = uuid.New()
		}
		if events[idx].Seq == 0 {
			maxSeq++
			events[idx].Seq = maxSeq
		}
	}
	if events == nil {
		events = []notification.Event{}
	}
	i.events = events
	i.seq = maxSeq

	logger.Ctx(ctx, i.logger).Debug("Notifications loaded", zap.String("key", i.key), zap.Int("count", len(events)))
	return nil
}

// Record wraps a payload as a new event received now and appends it
func (i *Inbox) Record(ctx context.Context, kind notification.Kind, data json.RawMessage) (notification.Event, error) {
	return i.Append(ctx, notification.NewEvent(0, kind, data, i.now()))
}

// Append adds an event at the head of the list.
// The event gets the next sequence number, and an id and receive time if it has none.
func (i *Inbox) Append(ctx context.Context, e notification.Event) (notification.Event, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = i.now()
	}
	if e.Payload == nil {
		e.Payload = notification.DecodePayload(e.Type, nil)
	}
	e.Seq = i.seq + 1

	prev := i.events
	next := make([]notification.Event, 0, len(prev)+1)
	next = append(next, e)
	next = append(next, prev...)

	if err := i.persist(ctx, next); err != nil {
		return notification.Event{}, err
	}
	i.events = next
	i.seq = e.Seq

	i.publish(Change{Op: ChangeAppended, Event: &e, ID: e.ID, Len: len(next)})
	return e, nil
}

// Remove deletes the event with the given id.
// It reports false when no event matched.
func (i *Inbox) Remove(ctx context.Context, id uuid.UUID) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	idx := -1
	for n, e := range i.events {
		if e.ID == id {
			idx = n
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	next := make([]notification.Event, 0, len(i.events)-1)
	next = append(next, i.events[:idx]...)
	next = append(next, i.events[idx+1:]...)

	if err := i.persist(ctx, next); err != nil {
		return false, err
	}
	i.events = next

	i.publish(Change{Op: ChangeRemoved, ID: id, Len: len(next)})
	return true, nil
}

// Clear removes every event
func (i *Inbox) Clear(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	next := []notification.Event{}
	if err := i.persist(ctx, next); err != nil {
		return err
	}
	i.events = next

	i.publish(Change{Op: ChangeCleared})
	return nil
}

// List returns a copy of the events, newest first
func (i *Inbox) List() []notification.Event {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]notification.Event, len(i.events))
	copy(out, i.events)
	return out
}

// Get returns one event by id
func (i *Inbox) Get(id uuid.UUID) (notification.Event, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for _, e := range i.events {
		if e.ID == id {
			return e, true
		}
	}
	return notification.Event{}, false
}

// Len returns the number of events
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.events)
}

func (i *Inbox) persist(ctx context.Context, events []notification.Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := i.store.Put(ctx, i.key, data); err != nil {
		logger.Ctx(ctx, i.logger).Error("Failed to persist notifications", zap.String("key", i.key), zap.Error(err))
		return fmt.Errorf("persist notifications: %w", err)
	}
	return nil
}

// Subscribe returns a channel of changes and a function that ends the subscription.
// Changes are dropped for a subscriber that does not keep up.
func (i *Inbox) Subscribe() (<-chan Change, func()) {
	i.subMu.Lock()
	defer i.subMu.Unlock()

	id := i.nextSub
	i.nextSub++
	ch := make(chan Change, subscriberBuffer)
	i.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			i.subMu.Lock()
			defer i.subMu.Unlock()
			delete(i.subs, id)
			close(ch)
		})
	}
}

// SubscriberCount returns the number of live subscriptions
func (i *Inbox) SubscriberCount() int {
	i.subMu.Lock()
	defer i.subMu.Unlock()
	return len(i.subs)
}

func (i *Inbox) publish(c Change) {
	i.subMu.Lock()
	defer i.subMu.Unlock()

	for id, ch := range i.subs {
		select {
		case ch <- c:
		default:
			i.logger.Warn("Dropping inbox change for slow subscriber", zap.Int("subscriber", id), zap.String("op", string(c.Op)))
		}
	}
}
