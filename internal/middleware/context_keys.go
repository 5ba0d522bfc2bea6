package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the authenticated user's ID.
const userIDKey = contextKey("userID")

// authMethodKey records which middleware authenticated the request.
const authMethodKey = contextKey("authMethod")

const (
	AuthMethodJWT    = "jwt"
	AuthMethodAPIKey = "api_key"
)

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		// check in the request context as well
		if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
			return userID, true
		}
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// setAuthenticatedUser stores the caller in both the Gin and the request context
// and enriches the request logger with the user ID.
func setAuthenticatedUser(c *gin.Context, userID, method string) {
	ctx := c.Request.Context()
	logger := GetLoggerFromCtx(ctx).With("user_id", userID, "auth_method", method)
	ctx = context.WithValue(ctx, userIDKey, userID)
	c.Request = c.Request.WithContext(WithLogger(ctx, logger))
	c.Set(string(userIDKey), userID)
	c.Set(string(authMethodKey), method)
}
