package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("")
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
	assert.Equal(t, "dev", h.version)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.2.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Storefront Console API", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("1.0.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	data := resp.Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])
	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
}

func TestSystemHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(h *SystemHandler) (*httptest.ResponseRecorder, HealthResponse) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)
		h.Health(c)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return w, resp
	}

	t.Run("no checks", func(t *testing.T) {
		w, resp := run(NewSystemHandler("1.0.0"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", resp.Status)
		assert.Empty(t, resp.Checks)
	})

	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("1.0.0").
			AddCheck("storage", func(context.Context) error { return nil })
		w, resp := run(h)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]string{"storage": "ok"}, resp.Checks)
	})

	t.Run("failing check degrades", func(t *testing.T) {
		h := NewSystemHandler("1.0.0").
			AddCheck("storage", func(context.Context) error { return nil }).
			AddCheck("event_source", func(context.Context) error { return errors.New("disconnected") })
		w, resp := run(h)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "disconnected", resp.Checks["event_source"])
		assert.Equal(t, "ok", resp.Checks["storage"])
	})
}
