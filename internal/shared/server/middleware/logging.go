package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/telemetry"
)

// Context keys handlers set so the access log can correlate resources.
const (
	ResumeIDKey      = "resumeId"
	ApplicationIDKey = "applicationId"
)

// Logging emits one structured line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if userID := UserIDFromContext(c); userID != "" {
			fields["user_id"] = userID
		}
		if id := c.GetString(ResumeIDKey); id != "" {
			fields["resume_id"] = id
		}
		if id := c.GetString(ApplicationIDKey); id != "" {
			fields["application_id"] = id
		}
		telemetry.Info("request.complete", fields)
	}
}
