package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appnotification "github.com/storefront/console/internal/application/notification"
	"github.com/storefront/console/internal/domain/notification"
)

// NotificationResponse is one inbox entry as shown to the operator
type NotificationResponse struct {
	ID         uuid.UUID         `json:"id"`
	Seq        uint64            `json:"seq"`
	Type       notification.Kind `json:"type"`
	Known      bool              `json:"known"`
	Summary    string            `json:"summary"`
	Data       json.RawMessage   `json:"data"`
	ReceivedAt time.Time         `json:"received_at"`
}

func toNotificationResponse(e notification.Event) NotificationResponse {
	data, err := e.Data()
	if err != nil {
		data = json.RawMessage("null")
	}
	return NotificationResponse{
		ID:         e.ID,
		Seq:        e.Seq,
		Type:       e.Type,
		Known:      e.Known(),
		Summary:    e.Summary(),
		Data:       data,
		ReceivedAt: e.ReceivedAt,
	}
}

// NotificationHandler handles inbox API endpoints
type NotificationHandler struct {
	BaseHandler
	inbox *appnotification.Inbox
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inbox *appnotification.Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// List godoc
// @ID           listNotifications
// @Summary      List notifications
// @Description  Returns the inbox, newest first
// @Tags         notifications
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	events := h.inbox.List()
	out := make([]NotificationResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toNotificationResponse(e))
	}
	h.Success(c, out)
}

// Delete godoc
// @ID           deleteNotification
// @Summary      Remove one notification
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid notification ID format")
		return
	}

	removed, err := h.inbox.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !removed {
		h.NotFound(c, "Notification "+id.String()+" not found")
		return
	}
	h.NoContent(c)
}

// Clear godoc
// @ID           clearNotifications
// @Summary      Remove every notification
// @Tags         notifications
// @Success      204
// @Failure      500 {object} dto.Response
// @Router       /notifications [delete]
func (h *NotificationHandler) Clear(c *gin.Context) {
	if err := h.inbox.Clear(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
