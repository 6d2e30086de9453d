package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

// Error codes carried in the "code" field of every error body.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeUnavailable  = "unavailable"
)

// Reasons distinguish the two unauthenticated outcomes for diagnosis.
const (
	ReasonMissingCredential = "missing_credential"
	ReasonInvalidCredential = "invalid_credential"
)

// Error maps a domain error to its status and a generic message and aborts the
// chain. Wrapped details are logged, never returned to the client.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainauth.ErrMissingCredential):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":  "Access denied. No token provided.",
			"code":   CodeUnauthorized,
			"reason": ReasonMissingCredential,
		})
	case errors.Is(err, domainauth.ErrInvalidCredential):
		slog.DebugContext(c.Request.Context(), "credential rejected", "error", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":  "Invalid token.",
			"code":   CodeUnauthorized,
			"reason": ReasonInvalidCredential,
		})
	case errors.Is(err, domainauth.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Admin privileges required.",
			"code":  CodeForbidden,
		})
	case errors.Is(err, domainprompt.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error": "Agent not found.",
			"code":  CodeNotFound,
		})
	case errors.Is(err, domainprompt.ErrBadRequest), errors.Is(err, domainauth.ErrBadRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body.",
			"code":  CodeBadRequest,
		})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to access agent prompts.",
			"code":  CodeUnavailable,
		})
	}
}
