package app

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// basicAuth holds the /metrics credentials.
type basicAuth struct {
	enabled  bool
	username string
	password string
}

func (a basicAuth) allows(user, pass string) bool {
	// Evaluate both comparisons so timing does not reveal which one failed.
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.username))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(a.password))
	return userOK&passOK == 1
}

// metricsAuthMiddleware enforces Basic Auth on /metrics when enabled.
func metricsAuthMiddleware(auth basicAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.enabled {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok || !auth.allows(user, pass) {
			c.Header("WWW-Authenticate", `Basic realm="metrics"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
