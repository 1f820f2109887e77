package router

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/fedotovm/imagestore/internal/api/handlers/image"
	"github.com/fedotovm/imagestore/internal/api/handlers/logs"
	"github.com/fedotovm/imagestore/internal/middleware"
)

// Setup wires the HTTP routes. Every route except the health probe requires
// the static bearer token.
func Setup(imageHandler *image.Handler, logsHandler *logs.Handler, bearerToken string) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.RequestLogger())
	r.Use(ginext.Recovery())

	r.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})

	authed := r.Group("/", middleware.Auth(bearerToken))

	authed.POST("/images", imageHandler.Upload) // uploading image
	authed.GET("/images/:id", imageHandler.Get) // getting image by id
	authed.GET("/logs", logsHandler.Tail)       // tailing the process log

	return r
}
