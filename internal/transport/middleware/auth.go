package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CallerHeader carries the caller identity when token auth is off.
	CallerHeader = "X-Caller-Identity"

	callerKey = "caller"
)

type IdentityVerifier interface {
	Identity(token string) (string, error)
}

// Auth resolves the caller identity of a state-changing request. With a
// verifier the identity is the subject of the bearer token, otherwise it is
// taken from CallerHeader as is.
func Auth(verifier IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			caller := strings.TrimSpace(c.GetHeader(CallerHeader))
			if caller == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + CallerHeader + " header"})
				return
			}
			c.Set(callerKey, caller)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization token"})
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header format"})
			return
		}

		caller, err := verifier.Identity(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(callerKey, caller)
		c.Next()
	}
}

// Caller returns the identity set by Auth, or "" on public routes.
func Caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
