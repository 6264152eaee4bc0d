package app

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/permcatalog/edu-catalog/internal/ctxutil"
	"github.com/permcatalog/edu-catalog/internal/logger"
	"github.com/permcatalog/edu-catalog/internal/metrics"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-Id"

var requestIDHeaders = []string{HeaderRequestID, "X-Correlation-Id"}

// requestIDMiddleware reuses an incoming request ID or generates one, stores
// it in the request context and echoes it back.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var requestID string
		for _, h := range requestIDHeaders {
			if v := strings.TrimSpace(c.GetHeader(h)); v != "" && len(v) <= 128 {
				requestID = v
				break
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to responses. The page
// loads the datastar bundle, so its origin is allowed for scripts; datastar
// evaluates attribute expressions and needs 'unsafe-eval'.
func securityHeadersMiddleware(datastarURL string) gin.HandlerFunc {
	csp := contentSecurityPolicy(datastarURL)
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", csp)
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

func contentSecurityPolicy(datastarURL string) string {
	scriptSrc := "'self' 'unsafe-eval'"
	if u, err := url.Parse(datastarURL); err == nil && u.Scheme != "" && u.Host != "" {
		scriptSrc += " " + u.Scheme + "://" + u.Host
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"base-uri 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}, "; ")
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug. Server errors are counted.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		entry := log.WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			m.RecordHTTPError("server_error", c.FullPath())
			entry.ErrorContext(ctx, "HTTP request failed")
		case status == 404:
			entry.DebugContext(ctx, "HTTP request not found")
		case status >= 400:
			entry.WarnContext(ctx, "HTTP request rejected")
		default:
			entry.DebugContext(ctx, "HTTP request completed")
		}
	}
}
