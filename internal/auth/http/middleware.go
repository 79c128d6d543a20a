// Package http provides the authentication and rate limiting middlewares of the field API.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/phivault/internal/errors"
	"github.com/allisson/phivault/internal/httputil"
)

// TokenVerifier checks a presented bearer token.
type TokenVerifier interface {
	Verify(plainToken string) bool
}

// AuthenticationMiddleware requires "Authorization: Bearer <token>" (scheme is
// case-insensitive) with a token accepted by verifier. Failures are 401.
func AuthenticationMiddleware(verifier TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	const bearerPrefix = "bearer "

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) <= len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !verifier.Verify(strings.TrimSpace(authHeader[len(bearerPrefix):])) {
			logger.Debug("authentication failed: token rejected", slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
