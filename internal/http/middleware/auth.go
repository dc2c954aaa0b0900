// README: Auth middleware: verifies bearer JWTs and exposes the caller to handlers.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"travelbook/internal/auth"
	"travelbook/internal/types"
)

const (
	ctxUID      = "auth.uid"
	ctxUsername = "auth.username"
	ctxRole     = "auth.role"
)

func Auth(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUID, token.UID)
		c.Set(ctxUsername, token.Username)
		c.Set(ctxRole, token.Role)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CallerRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

func CallerUID(c *gin.Context) string      { return c.GetString(ctxUID) }
func CallerUsername(c *gin.Context) string { return c.GetString(ctxUsername) }
func CallerRole(c *gin.Context) string     { return c.GetString(ctxRole) }

// CallerID is the numeric user id behind CallerUID, or 0 if it is not numeric.
func CallerID(c *gin.Context) types.ID {
	n, err := strconv.ParseInt(CallerUID(c), 10, 64)
	if err != nil {
		return 0
	}
	return types.ID(n)
}
