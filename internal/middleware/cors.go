package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS admits the caja front-end at the configured origin (CORS_ORIGIN; the
// "*" default is for local development). The ledger API only serves GET, POST
// and DELETE, so no other methods are advertised.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
