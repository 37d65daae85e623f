package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/interfaces/http/dto"
)

// ErrCodeRequestTooLarge is returned when a request body exceeds the limit
const ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

const requestTooLargeMessage = "Request body exceeds maximum allowed size"

// BodyLimit caps the body of PUT, POST and PATCH requests at maxBytes.
// A declared Content-Length over the cap is refused up front; bodies of unknown
// length are cut off while the handler binds them (see IsBodyTooLarge).
// maxBytes <= 0 disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || !carriesBody(c.Request.Method) {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func abortTooLarge(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
		ErrCodeRequestTooLarge,
		requestTooLargeMessage,
		GetRequestID(c),
	))
}
