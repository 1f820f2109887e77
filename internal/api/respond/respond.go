package respond

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

// Error is the standard structure for error responses: a one-line message
// with no internal detail.
type Error struct {
	Message string `json:"error"`
}

// JSON sends a JSON response with the specified HTTP status code and data.
func JSON(c *ginext.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// OK sends a 200 OK JSON response.
func OK(c *ginext.Context, result interface{}) {
	JSON(c, http.StatusOK, result)
}

// Created sends a 201 Created JSON response.
func Created(c *ginext.Context, result interface{}) {
	JSON(c, http.StatusCreated, result)
}

// Fail sends an error JSON response with the specified HTTP status code.
func Fail(c *ginext.Context, status int, err error) {
	JSON(c, status, Error{Message: err.Error()})
}
