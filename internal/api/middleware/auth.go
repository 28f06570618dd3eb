package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/obunabot/obuna_go_server/internal/pkg/jwt"
	"github.com/obunabot/obuna_go_server/internal/pkg/response"
)

const (
	AdminIDKey = "adminID"
)

// Auth validates the dashboard JWT and stores the admin id on the context.
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "missing credentials")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AdminIDKey, claims.AdminID)
		c.Next()
	}
}

// GetAdminID returns the authenticated admin id set by Auth.
func GetAdminID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(AdminIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
