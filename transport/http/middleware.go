package http

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/core"
	"github.com/vitalis-labs/healthmarket/service"
)

const identityKey = "identity"

// AuthMiddleware validates the bearer credential on every protected request
// and attaches the verified identity to the request context.
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			respondError(c, logger, core.ErrMissingCredential)
			return
		}

		identity, err := authService.Authenticate(c.Request.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// requesterIdentity returns the identity the auth middleware attached.
func requesterIdentity(c *gin.Context) core.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(core.Identity); ok {
			return id
		}
	}
	return ""
}

// RequestLogger logs one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("client", c.ClientIP()),
		)
	}
}
