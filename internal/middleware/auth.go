package middleware

import (
	"errors"
	"net/http"
	"strings"

	"CosmicOutfits_OutfitBuilder/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// gin context keys set by Auth
const (
	KeyUserID      = "userID"
	KeyEmail       = "email"
	KeyTokenID     = "tokenID"
	KeyTokenExpiry = "tokenExpiry"
)

// TokenValidator is satisfied by *auth.Manager.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth accepts "Authorization: Bearer <jwt>", or a ?token= query parameter for
// clients that cannot set headers (websocket, <model-viewer> asset loads).
func Auth(tokens TokenValidator, revoked *auth.Revocations, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Errorw("revocation lookup failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify session"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session has been signed out"})
				return
			}
		}

		c.Set(KeyUserID, claims.UserID())
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(KeyTokenExpiry, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if q := c.Query("token"); q != "" {
			return q, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return "", false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}
