package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/tasktracker/internal/apperrors"
)

// Context keys for identity data
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyClaims = "auth_claims"
)

// TokenVerifier resolves a bearer token into identity claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Middleware authenticates requests carrying a bearer session token.
type Middleware struct {
	verifier TokenVerifier
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(verifier TokenVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Handler returns a Gin middleware that rejects requests without a valid token.
// The user store is not consulted, so tokens of deleted users keep working until expiry.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, "authentication required")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrTokenExpired) {
				msg = "token expired"
			}
			abortUnauthenticated(c, msg)
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="tasktracker"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
		Error: msg,
		Code:  string(apperrors.KindUnauthenticated),
	})
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 if the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetClaims retrieves the verified token claims from the context.
func GetClaims(c *gin.Context) *Claims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
