// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/secondbrain-io/secondbrain/pkg/utils/errors"
	"github.com/secondbrain-io/secondbrain/pkg/utils/response"
)

// RequestIDKey is the gin context key carrying the request ID.
const RequestIDKey = "X-Request-ID"

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	var resp *response.Response
	if err != nil {
		resp = response.Err(errors.FromError(err))
	} else {
		resp = response.Success(data)
	}

	if id := c.GetString(RequestIDKey); id != "" {
		resp.WithRequestID(id)
	}
	c.JSON(resp.HTTPStatus(), resp)
}

// WriteAccepted writes a success envelope with a 202 status, used when
// work continues in the background after the response.
func WriteAccepted(c *gin.Context, data interface{}) {
	resp := response.Success(data)
	if id := c.GetString(RequestIDKey); id != "" {
		resp.WithRequestID(id)
	}
	c.JSON(http.StatusAccepted, resp)
}
