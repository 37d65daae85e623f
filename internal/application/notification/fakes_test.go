package notification

import (
	"context"
	"errors"
	"sync"
)

// memoryStore is an in-test notification.Store with failure injection
type memoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	putErr   error
	puts     int
	deletes  int
	getCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.data, key)
	return nil
}

func (s *memoryStore) raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

var errConnClosed = errors.New("use of closed connection")

// scriptedConn replays messages, then blocks until closed
type scriptedConn struct {
	mu         sync.Mutex
	messages   []Message
	failAfter  bool
	subscribed [][]string
	closed     chan struct{}
	closeOnce  sync.Once
}

func newScriptedConn(messages ...Message) *scriptedConn {
	return &scriptedConn{messages: messages, closed: make(chan struct{})}
}

func (c *scriptedConn) Subscribe(_ context.Context, events []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = append(c.subscribed, events)
	return nil
}

func (c *scriptedConn) Read(context.Context) (Message, error) {
	c.mu.Lock()
	if len(c.messages) > 0 {
		m := c.messages[0]
		c.messages = c.messages[1:]
		c.mu.Unlock()
		return m, nil
	}
	failAfter := c.failAfter
	c.mu.Unlock()

	if failAfter {
		return Message{}, errors.New("connection reset by peer")
	}
	<-c.closed
	return Message{}, errConnClosed
}

func (c *scriptedConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *scriptedConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// scriptedDialer hands out connections in order; dial errors are returned when conns run out
type scriptedDialer struct {
	mu    sync.Mutex
	conns []*scriptedConn
	dials int
}

func (d *scriptedDialer) Dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.conns) == 0 {
		return nil, errors.New("connection refused")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *scriptedDialer) Endpoint() string { return "ws://test/events" }

func (d *scriptedDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
