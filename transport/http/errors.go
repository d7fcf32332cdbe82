package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitalis-labs/healthmarket/core"
)

// errorBody is the wire shape of every failure: a machine-readable kind and
// a human detail string. Never a stack trace.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError maps a service error to its HTTP status and error kind.
// Internal and registry failures are logged with full detail and answered
// with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidIdentity):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "InvalidIdentity", Details: err.Error()})
	case errors.Is(err, core.ErrMissingInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "MissingOrInvalidInput", Details: err.Error()})
	case errors.Is(err, core.ErrMalformedChallenge):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "MalformedChallenge", Details: err.Error()})
	case errors.Is(err, core.ErrNonceMismatch):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "NonceMismatch", Details: "nonce is invalid or expired"})
	case errors.Is(err, core.ErrSignatureMismatch):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "SignatureMismatch", Details: "signature does not match address"})
	case errors.Is(err, core.ErrMissingCredential):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "MissingCredential", Details: "access token required"})
	case errors.Is(err, core.ErrInvalidCredential):
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "InvalidOrExpiredCredential", Details: "invalid or expired token"})
	case errors.Is(err, core.ErrAccessDenied):
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "AccessDenied", Details: err.Error()})
	case errors.Is(err, core.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{Error: "NotFound", Details: "record not found"})
	case errors.Is(err, core.ErrRegistryUnavailable):
		logger.Error("registry call failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody{Error: "RegistryUnavailable", Details: "registry temporarily unavailable"})
	default:
		logger.Error("internal error", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "InternalError", Details: "internal server error"})
	}
}
