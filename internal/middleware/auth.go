package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/steermate/steermate-backend-go/internal/auth"
	"github.com/steermate/steermate-backend-go/pkg/response"
)

const userIDKey = "userID"

// Authenticator resolves a bearer token to an existing user id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user id in the context.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c)
			return
		}

		userID, err := authn.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if errors.Is(err, auth.ErrInvalidToken) {
			unauthorized(c)
			return
		}
		if err != nil {
			_ = c.Error(err)
			response.InternalError(c, "Internal server error")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Unauthorized(c, "Could not validate credentials")
}

// UserID returns the authenticated user id. ok is false on routes without Auth.
func UserID(c *gin.Context) (id int64, ok bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok = v.(int64)
	return id, ok
}
