package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMetricsAuthMiddleware(t *testing.T) {
	enabled := basicAuth{enabled: true, username: "prometheus", password: "secret123"}

	tests := []struct {
		name       string
		auth       basicAuth
		setAuth    bool
		user, pass string
		wantStatus int
	}{
		{name: "disabled passes through", auth: basicAuth{username: "prometheus"}, wantStatus: http.StatusOK},
		{name: "valid credentials", auth: enabled, setAuth: true, user: "prometheus", pass: "secret123", wantStatus: http.StatusOK},
		{name: "missing header", auth: enabled, wantStatus: http.StatusUnauthorized},
		{name: "wrong password", auth: enabled, setAuth: true, user: "prometheus", pass: "nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong username", auth: enabled, setAuth: true, user: "admin", pass: "secret123", wantStatus: http.StatusUnauthorized},
		{name: "empty credentials", auth: enabled, setAuth: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/metrics", metricsAuthMiddleware(tt.auth), func(c *gin.Context) {
				c.String(http.StatusOK, "metrics")
			})

			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="metrics"`, w.Header().Get("WWW-Authenticate"))
			} else {
				assert.Equal(t, "metrics", w.Body.String())
			}
		})
	}
}
