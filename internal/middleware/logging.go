package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

// RequestLogger logs every request and its response status, tagging both
// entries with a generated request id.
func RequestLogger() func(c *ginext.Context) {
	return func(c *ginext.Context) {
		requestID := uuid.NewString()
		start := time.Now()

		zlog.Logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request")

		c.Next()

		zlog.Logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("response")
	}
}
