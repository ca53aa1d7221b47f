package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityIDKey = "auth.identity_id"
	sessionIDKey  = "auth.session_id"
	emailKey      = "auth.email"
)

// SessionValidator reports whether a session is still active (exists,
// unexpired, not revoked by logout).
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID uuid.UUID) error
}

// Middleware authenticates requests via a Bearer token and checks the
// backing session against the validator. On success the identity and
// session IDs are stored on the gin context.
func Middleware(tokens *TokenManager, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authorization header is not a bearer token",
			})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		identityID, err := uuid.Parse(claims.IdentityID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token claims",
			})
			return
		}
		sessionID, err := uuid.Parse(claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid token claims",
			})
			return
		}

		if err := sessions.ValidateSession(c.Request.Context(), sessionID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "session is no longer active",
			})
			return
		}

		c.Set(identityIDKey, identityID)
		c.Set(sessionIDKey, sessionID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// IdentityID returns the authenticated identity ID set by Middleware.
func IdentityID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(identityIDKey)
	id, _ := v.(uuid.UUID)
	return id
}

// SessionID returns the authenticated session ID set by Middleware.
func SessionID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(sessionIDKey)
	id, _ := v.(uuid.UUID)
	return id
}
