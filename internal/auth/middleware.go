package auth

import (
	"github.com/gin-gonic/gin"
)

const (
	HeaderOwnerID = "X-Owner-ID"
	HeaderActorID = "X-Actor-ID"
)

// Middleware copies the owner and actor headers into the request
// context so usecases can resolve the caller's scope without touching
// the transport.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if owner := c.GetHeader(HeaderOwnerID); owner != "" {
			ctx = WithOwnerID(ctx, owner)
		}
		if actor := c.GetHeader(HeaderActorID); actor != "" {
			ctx = WithActorID(ctx, actor)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
