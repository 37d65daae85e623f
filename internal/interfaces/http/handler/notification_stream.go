package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/storefront/console/internal/application/notification"
	"github.com/storefront/console/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SSE event names
const (
	SSEEventConnected = "connected"
	SSEEventHeartbeat = "heartbeat"
	// inbox changes are sent as "notification.appended", "notification.removed" and "notification.cleared"
	sseChangePrefix = "notification."
)

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

// InboxChangeEvent is the data of an inbox change message
type InboxChangeEvent struct {
	Op           appnotification.ChangeOp `json:"op"`
	ID           uuid.UUID                `json:"id"`
	Len          int                      `json:"len"`
	Notification *NotificationResponse    `json:"notification,omitempty"`
}

// NotificationStreamHandler pushes inbox changes to browsers over Server-Sent Events
type NotificationStreamHandler struct {
	BaseHandler
	inbox      *appnotification.Inbox
	logger     *zap.Logger
	heartbeat  time.Duration
	maxClients int
	clients    atomic.Int64
	seq        atomic.Uint64
	ctx        context.Context
	cancel     context.CancelFunc
}

// NotificationStreamOption is a functional option for configuring the handler
type NotificationStreamOption func(*NotificationStreamHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients; zero means unlimited
func WithSSEMaxClients(max int) NotificationStreamOption {
	return func(h *NotificationStreamHandler) {
		h.maxClients = max
	}
}

// NewNotificationStreamHandler creates a new SSE handler for inbox changes
func NewNotificationStreamHandler(inbox *appnotification.Inbox, opts ...NotificationStreamOption) *NotificationStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &NotificationStreamHandler{
		inbox:      inbox,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxClients: 100,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stop disconnects every client. Streams opened afterwards end immediately.
func (h *NotificationStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("Notification stream stopped")
}

// GetClientCount returns the number of connected SSE clients
func (h *NotificationStreamHandler) GetClientCount() int {
	return int(h.clients.Load())
}

// Stream godoc
// @ID           streamNotifications
// @Summary      Subscribe to inbox changes via SSE
// @Description  Sends "connected" once, then one message per inbox change and a periodic heartbeat
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      503 {object} dto.Response
// @Router       /notifications/stream [get]
func (h *NotificationStreamHandler) Stream(c *gin.Context) {
	if n := h.clients.Add(1); h.maxClients > 0 && n > int64(h.maxClients) {
		h.clients.Add(-1)
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeMaxConnections, "Maximum number of stream connections reached")
		return
	}
	defer h.clients.Add(-1)

	changes, unsubscribe := h.inbox.Subscribe()
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	clientID := uuid.NewString()
	h.logger.Info("SSE client connected", zap.String("client_id", clientID))

	h.send(c, SSEMessage{
		Event: SSEEventConnected,
		Data:  fmt.Sprintf(`{"client_id":%q,"len":%d}`, clientID, h.inbox.Len()),
	})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected", zap.String("client_id", clientID))
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.send(c, SSEMessage{
				Event: SSEEventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		case change, ok := <-changes:
			if !ok {
				return
			}
			msg, err := h.changeMessage(change)
			if err != nil {
				h.logger.Error("Failed to marshal SSE event", zap.Error(err))
				continue
			}
			h.send(c, msg)
		}
	}
}

func (h *NotificationStreamHandler) changeMessage(change appnotification.Change) (SSEMessage, error) {
	event := InboxChangeEvent{Op: change.Op, ID: change.ID, Len: change.Len}
	if change.Event != nil {
		resp := toNotificationResponse(*change.Event)
		event.Notification = &resp
	}
	data, err := json.Marshal(event)
	if err != nil {
		return SSEMessage{}, err
	}
	return SSEMessage{
		Event: sseChangePrefix + string(change.Op),
		Data:  string(data),
		ID:    strconv.FormatUint(h.seq.Add(1), 10),
	}, nil
}

func (h *NotificationStreamHandler) send(c *gin.Context, msg SSEMessage) {
	writeSSE(c.Writer, msg)
	c.Writer.Flush()
}

// writeSSE writes an SSE event to the response writer
func writeSSE(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
