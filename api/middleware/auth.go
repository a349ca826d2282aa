package middleware

import (
	"net/http"
	"strings"

	"empowerpwd/api/response"
	"empowerpwd/models"
	"empowerpwd/services"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware requires a valid bearer token and puts the identity into
// the context.
func AuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return authenticate(tokens, bearerToken)
}

// WSAuthMiddleware is AuthMiddleware for WebSocket upgrades. Browsers cannot
// set headers on an upgrade, so ?token= is accepted here and nowhere else.
func WSAuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return authenticate(tokens, func(c *gin.Context) string {
		if token := bearerToken(c); token != "" {
			return token
		}
		return c.Query("token")
	})
}

func authenticate(tokens *services.TokenService, tokenOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenOf(c)
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the identity when a valid token is present.
func OptionalAuthMiddleware(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := tokens.Parse(token); err == nil {
				c.Set(UserIDKey, claims.UserID)
				c.Set(RoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Fail(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// CurrentUserID returns 0 for anonymous requests.
func CurrentUserID(c *gin.Context) int64 {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(RoleKey); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return ""
}
