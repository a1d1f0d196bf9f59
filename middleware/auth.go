package middleware

import (
	"net/http"
	"strings"

	"github.com/Hiteshmehtaa/yann-app-sub003/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by ActorAuthMiddleware.
const (
	ActorIDKey   = "actorID"
	ActorRoleKey = "role"
)

const (
	RoleResident = "resident"
	RoleProvider = "provider"
)

// ActorAuthMiddleware validates the bearer token and stores the actor id and
// role in the gin context. Requests without a token are rejected unless
// optional is set, in which case they continue anonymously.
func ActorAuthMiddleware(secret []byte, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if optional {
				c.Next()
				return
			}
			utils.JSONError(c, http.StatusUnauthorized, "Missing Authorization header", "")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid Authorization header", "expected Bearer token")
			return
		}

		actor, err := utils.ActorFromToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid token", err.Error())
			return
		}

		c.Set(ActorIDKey, actor.ID)
		c.Set(ActorRoleKey, actor.Role)
		c.Next()
	}
}

// RequireRole aborts unless the authenticated actor has role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ActorRoleKey) != role {
			utils.JSONError(c, http.StatusForbidden, "Forbidden", "this action requires role "+role)
			return
		}
		c.Next()
	}
}

// RejectRole aborts when the authenticated actor has role. Anonymous callers
// pass through.
func RejectRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ActorRoleKey) == role {
			utils.JSONError(c, http.StatusForbidden, "Forbidden", "this action is not available to role "+role)
			return
		}
		c.Next()
	}
}
