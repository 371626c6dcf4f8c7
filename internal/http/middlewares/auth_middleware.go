package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/service"
	"github.com/gin-gonic/gin"
)

// IdentityResolver maps an Authorization header to the stored user.
type IdentityResolver interface {
	Resolve(ctx context.Context, authHeader string) (user.User, error)
}

type AuthMiddleware struct {
	identity IdentityResolver
}

func NewAuthMiddleware(identity IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// RequireAuth resolves the bearer token to a stored user. A valid token whose
// user no longer exists is a 404, not a 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := m.identity.Resolve(c.Request.Context(), c.GetHeader("Authorization"))

		switch {
		case err == nil:
		case errors.Is(err, service.ErrUnauthorized):
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		case errors.Is(err, service.ErrNotFound):
			abortWithError(c, http.StatusNotFound, "user_not_found", "User not found")
			return
		default:
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not resolve identity")
			return
		}

		// Stash the resolved user on the context
		c.Set(CtxUser, u)
		c.Set(CtxEmail, u.Email)

		c.Next()
	}
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxEmail)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}

func abortWithError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": id,
		},
	})
}
