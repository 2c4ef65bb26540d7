package middleware

import (
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// keys for the authenticated caller in the request context.
const (
	userIDKey = contextKey("userID")
	roleKey   = contextKey("role")
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetActorFromContext returns the caller's user ID and role as set by AuthMiddleware.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Actor{}, false
	}
	role, ok := c.Request.Context().Value(roleKey).(domain.Role)
	if !ok || !role.IsValid() {
		return domain.Actor{}, false
	}
	return domain.Actor{UserID: userID, Role: role}, true
}
