package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/storefront/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordedRequest captures what the fake API received
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeAPI(t *testing.T, mux *http.ServeMux) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		api.mu.Lock()
		api.requests = append(api.requests, rec)
		api.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: a.server.URL + "/api", Token: "secret"}, zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return c
}

func (a *fakeAPI) received() []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedRequest(nil), a.requests...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type callRecorder struct {
	mu     sync.Mutex
	routes []string
	codes  []int
}

func (r *callRecorder) RecordRemoteCall(_ context.Context, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
	r.codes = append(r.codes, status)
}

// ============================================
// Client Tests
// ============================================

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "/api"}, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	c, err := NewClient(Config{BaseURL: "http://localhost:5000/api/"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", c.BaseURL())
}

func TestClient_ErrorMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/with-message", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid status transition"})
	})
	mux.HandleFunc("/api/with-error", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict"})
	})
	mux.HandleFunc("/api/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	api := newFakeAPI(t, mux)
	metrics := &callRecorder{}
	c := api.client(t, WithCallMetrics(metrics))

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"with-message", http.StatusBadRequest, "Invalid status transition"},
		{"with-error", http.StatusConflict, "conflict"},
		{"plain", http.StatusBadGateway, "HTTP error! status: 502"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := c.do(context.Background(), request{op: "ping", route: tt.path, method: http.MethodGet, path: []string{tt.path}}, nil)

			var re *shared.RemoteError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.status, re.StatusCode)
			assert.Equal(t, tt.message, re.Message)
			assert.ErrorIs(t, err, shared.ErrRemote)
		})
	}
	assert.Equal(t, []int{400, 409, 502}, metrics.codes)
	assert.Equal(t, "Bearer secret", api.received()[0].Auth)
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	metrics := &callRecorder{}
	c, err := NewClient(Config{BaseURL: addr}, zaptest.NewLogger(t), WithCallMetrics(metrics))
	require.NoError(t, err)

	err = c.do(context.Background(), request{op: "ping", route: "ping", method: http.MethodGet, path: []string{"x"}}, nil)

	var re *shared.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.StatusCode)
	assert.NotNil(t, errors.Unwrap(re))
	assert.Equal(t, []int{0}, metrics.codes)
}

func TestClient_InvalidResponseBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/ord-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	c := newFakeAPI(t, mux).client(t)

	_, err := NewOrderStore(c).Get(context.Background(), "ord-1")
	var re *shared.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "invalid response body", re.Message)
}
