package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
)

// MsgTooManySubmissions is shown when a client exceeds its submission budget
const MsgTooManySubmissions = "Muitas tentativas em sequência. Aguarde um minuto e tente novamente."

// Limiter decides whether a client may proceed with an operation
type Limiter interface {
	Allow(client, operation string) bool
}

// SubmissionRateLimit rejects form posts from clients over their budget with 429
func SubmissionRateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if !limiter.Allow(c.ClientIP(), route) {
			observability.RateLimitedSubmissions.WithLabelValues(route).Inc()
			c.Header("Retry-After", "60")
			c.Header("Cache-Control", "no-store")
			c.String(http.StatusTooManyRequests, MsgTooManySubmissions)
			c.Abort()
			return
		}
		c.Next()
	}
}
