package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func newSwaggerEngine(cfg SwaggerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

func getSwagger(r http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	w := getSwagger(newSwaggerEngine(SwaggerConfig{}), "192.0.2.1:1234")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
}

func TestSwaggerProtection_EnabledWithoutRestriction(t *testing.T) {
	w := getSwagger(newSwaggerEngine(SwaggerConfig{Enabled: true}), "192.0.2.1:1234")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}

func TestSwaggerProtection_AllowedIPs(t *testing.T) {
	r := newSwaggerEngine(SwaggerConfig{
		Enabled:    true,
		AllowedIPs: []string{"10.0.0.0/8", " 192.0.2.7 ", "not-an-ip"},
	})

	tests := []struct {
		remote string
		want   int
	}{
		{"10.1.2.3:5000", http.StatusOK},
		{"192.0.2.7:5000", http.StatusOK},
		{"192.0.2.8:5000", http.StatusForbidden},
		{"[2001:db8::1]:5000", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			w := getSwagger(r, tt.remote)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), dto.ErrCodeForbidden)
			}
		})
	}
}
