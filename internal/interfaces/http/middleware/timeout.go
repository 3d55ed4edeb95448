package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/bookstore-backend/internal/interfaces/http/response"
)

// Timeout bounds the request context. Handlers observe the deadline through
// ctx; a request that ran out of time without writing gets a 504. A
// non-positive timeout disables the bound.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.Fail(c, http.StatusGatewayTimeout, "Request timeout")
		}
	}
}
