package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/fedotovm/imagestore/internal/api/respond"
)

const bearerPrefix = "Bearer "

// Auth validates the static bearer token on every request it guards.
// Missing or malformed headers and token mismatches both yield 401.
func Auth(token string) func(c *ginext.Context) {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			zlog.Logger.Warn().Str("path", c.Request.URL.Path).Msg("missing token")
			respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("missing or invalid Authorization header"))
			c.Abort()
			return
		}

		if strings.TrimPrefix(header, bearerPrefix) != token {
			zlog.Logger.Warn().Str("path", c.Request.URL.Path).Msg("invalid token")
			respond.Fail(c, http.StatusUnauthorized, fmt.Errorf("invalid token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
