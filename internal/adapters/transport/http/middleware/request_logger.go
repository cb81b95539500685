package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// scrub прячет заголовки с токенами и куками.
func scrub(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "authorization") || strings.Contains(lk, "cookie") {
			clone[k] = []string{"[redacted]"}
		}
	}
	return clone
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Core().Enabled(zap.DebugLevel) {
			reqHeaders, _ := json.Marshal(scrub(c.Request.Header))
			log.Debug("↘︎ incoming request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")),
				zap.ByteString("hdr", reqHeaders),
			)
		}

		ts := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(ts)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		}
		if u, ok := CurrentUser(c); ok {
			fields = append(fields, zap.String("user_id", u.ID.String()))
		}

		// Ошибки, которые handler сохранил в c.Errors
		for _, e := range c.Errors {
			log.Error("handler error", append(fields, zap.Error(e))...)
		}

		// Если CORS, guard или лимитер прервали запрос
		if c.IsAborted() {
			log.Warn("↗︎ aborted", fields...)
			return
		}

		log.Info("↗︎ completed", fields...)
	}
}
