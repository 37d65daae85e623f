// Package eventsource connects the console to the store's socket.io event server
// over the Engine.IO v4 websocket transport.
package eventsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	appnotification "github.com/storefront/console/internal/application/notification"
	"go.uber.org/zap"
)

const (
	writeWait               = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	// DefaultPath is where socket.io servers mount the engine.io endpoint
	DefaultPath = "/socket.io/"
)

// Config configures the socket.io dialer
type Config struct {
	// URL is the server origin as a socket.io client takes it: http, https, ws or wss.
	// A path other than "/" names the namespace.
	URL string
	// Path of the engine.io endpoint, DefaultPath when empty
	Path string
	// Namespace overrides the namespace taken from URL
	Namespace        string
	Token            string
	HandshakeTimeout time.Duration
}

// Dialer opens socket.io sessions to the event source
type Dialer struct {
	dialURL   string
	endpoint  string
	namespace string
	token     string
	timeout   time.Duration
	ws        *websocket.Dialer
	logger    *zap.Logger
}

// NewDialer validates the URL and creates a Dialer
func NewDialer(cfg Config, logger *zap.Logger) (*Dialer, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid event source URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("event source URL must be absolute, got %q", cfg.URL)
	}

	scheme := u.Scheme
	switch scheme {
	case "http":
		scheme = "ws"
	case "https":
		scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("event source URL must use http, https, ws or wss, got %q", u.Scheme)
	}

	namespace := cfg.Namespace
	if namespace == "" && u.Path != "" && u.Path != "/" {
		namespace = strings.TrimSuffix(u.Path, "/")
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	if !strings.HasPrefix(namespace, "/") {
		namespace = "/" + namespace
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	query := u.Query()
	query.Set("EIO", "4")
	query.Set("transport", "websocket")
	dialURL := url.URL{Scheme: scheme, Host: u.Host, Path: path, RawQuery: query.Encode()}

	timeout := cfg.HandshakeTimeout
	if timeout <= 0 {
		timeout = defaultHandshakeTimeout
	}

	return &Dialer{
		dialURL: dialURL.String(),
		// the query may carry credentials; keep it out of logs
		endpoint:  (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: namespace}).String(),
		namespace: namespace,
		token:     cfg.Token,
		timeout:   timeout,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
		logger: logger,
	}, nil
}

// Endpoint returns the server origin and namespace without credentials
func (d *Dialer) Endpoint() string {
	return d.endpoint
}

// Dial opens the websocket, completes the engine.io handshake and joins the namespace
func (d *Dialer) Dial(ctx context.Context) (appnotification.Conn, error) {
	header := http.Header{}
	if d.token != "" {
		header.Set("Authorization", "Bearer "+d.token)
	}

	ws, resp, err := d.ws.DialContext(ctx, d.dialURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	c := &Conn{ws: ws, namespace: d.namespace, logger: d.logger}
	if err := c.handshake(ctx, d.token, d.timeout); err != nil {
		_ = ws.Close()
		return nil, err
	}
	d.logger.Debug("Event source connected",
		zap.String("endpoint", d.endpoint),
		zap.String("sid", c.sid),
		zap.Duration("heartbeat", c.heartbeat),
	)
	return c, nil
}

// Conn is one socket.io session. Read must be called from a single goroutine.
type Conn struct {
	ws        *websocket.Conn
	namespace string
	sid       string
	heartbeat time.Duration
	logger    *zap.Logger

	// events filters delivery; empty delivers every event
	events map[string]struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// handshake reads the engine.io open packet, sends CONNECT and waits for the namespace ack
func (c *Conn) handshake(ctx context.Context, token string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetReadDeadline(deadline)

	frame, err := c.readFrame()
	if err != nil {
		return fmt.Errorf("engine.io handshake failed: %w", err)
	}
	open, err := parseOpenPacket(frame)
	if err != nil {
		return err
	}
	c.sid = open.SID
	c.heartbeat = open.heartbeat()

	var auth []byte
	if token != "" {
		auth, _ = json.Marshal(map[string]string{"token": token})
	}
	if err := c.write(encodeSocketPacket(sioConnect, c.namespace, -1, auth)); err != nil {
		return fmt.Errorf("failed to join namespace %s: %w", c.namespace, err)
	}

	for {
		frame, err := c.readFrame()
		if err != nil {
			return fmt.Errorf("namespace %s not acknowledged: %w", c.namespace, err)
		}
		p, ok, err := c.handleEngineFrame(frame)
		if err != nil {
			return err
		}
		if !ok || p.Namespace != c.namespace {
			continue
		}
		switch p.Type {
		case sioConnect:
			_ = c.ws.SetReadDeadline(time.Now().Add(c.heartbeat))
			return nil
		case sioConnectError:
			return connectError(p.Payload)
		}
	}
}

// Subscribe sets the event names Read delivers. socket.io has no server-side
// subscription, so this only filters. Call it before Read.
func (c *Conn) Subscribe(_ context.Context, events []string) error {
	c.events = make(map[string]struct{}, len(events))
	for _, e := range events {
		c.events[e] = struct{}{}
	}
	return nil
}

// Read returns the next subscribed event. Pings are answered and acks sent on the way.
// Cancel ctx and call Close to unblock a pending read.
func (c *Conn) Read(ctx context.Context) (appnotification.Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return appnotification.Message{}, err
		}

		frame, err := c.readFrame()
		if err != nil {
			return appnotification.Message{}, err
		}
		// each frame proves the session alive until the next expected ping
		_ = c.ws.SetReadDeadline(time.Now().Add(c.heartbeat))

		p, ok, err := c.handleEngineFrame(frame)
		if err != nil {
			return appnotification.Message{}, err
		}
		if !ok || p.Namespace != c.namespace {
			continue
		}

		switch p.Type {
		case sioEvent:
			name, data, err := decodeEvent(p.Payload)
			if err != nil {
				c.logger.Warn("Skipping malformed socket.io event", zap.Error(err))
				continue
			}
			if p.AckID >= 0 {
				if err := c.write(encodeSocketPacket(sioAck, c.namespace, p.AckID, []byte("[]"))); err != nil {
					return appnotification.Message{}, fmt.Errorf("failed to acknowledge event %s: %w", name, err)
				}
			}
			if !c.wants(name) {
				continue
			}
			return appnotification.Message{Event: name, Data: data}, nil
		case sioDisconnect:
			return appnotification.Message{}, ErrServerDisconnect
		case sioConnectError:
			return appnotification.Message{}, connectError(p.Payload)
		case sioBinaryEvent, sioBinaryAck:
			c.logger.Warn("Skipping binary socket.io packet", zap.String("namespace", p.Namespace))
		}
	}
}

// handleEngineFrame answers engine.io control packets. ok reports whether
// frame carried a socket.io packet.
func (c *Conn) handleEngineFrame(frame string) (p socketPacket, ok bool, err error) {
	switch frame[0] {
	case eioPing:
		if err := c.write(string(eioPong) + frame[1:]); err != nil {
			return p, false, fmt.Errorf("failed to answer ping: %w", err)
		}
		return p, false, nil
	case eioClose:
		return p, false, ErrServerDisconnect
	case eioMessage:
		packet, perr := parseSocketPacket(frame[1:])
		if perr != nil {
			c.logger.Warn("Skipping malformed socket.io packet", zap.Error(perr))
			return p, false, nil
		}
		return packet, true, nil
	case eioNoop, eioPong:
		return p, false, nil
	default:
		c.logger.Debug("Ignoring engine.io packet", zap.String("type", string(frame[0])))
		return p, false, nil
	}
}

// readFrame returns the next non-empty text frame. Binary attachments are dropped.
func (c *Conn) readFrame() (string, error) {
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage || len(data) == 0 {
			continue
		}
		return string(data), nil
	}
}

func (c *Conn) wants(event string) bool {
	if len(c.events) == 0 {
		return true
	}
	_, ok := c.events[event]
	return ok
}

func (c *Conn) write(frame string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

// Close leaves the namespace and releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if werr := c.write(encodeSocketPacket(sioDisconnect, c.namespace, -1, nil)); werr != nil {
			c.logger.Debug("Event source disconnect packet not sent", zap.Error(werr))
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); werr != nil &&
			!errors.Is(werr, websocket.ErrCloseSent) {
			c.logger.Debug("Event source close frame not sent", zap.Error(werr))
		}
		err = c.ws.Close()
	})
	return err
}

var (
	_ appnotification.Dialer = (*Dialer)(nil)
	_ appnotification.Conn   = (*Conn)(nil)
)
