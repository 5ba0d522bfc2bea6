package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries a service caller's key.
const APIKeyHeader = "x-api-key"

// APIKey is a bcrypt hash of an accepted key together with the user ID recorded on the caller's writes.
type APIKey struct {
	UserID string
	Hash   []byte
}

// ParseAPIKeys reads comma-separated "userID:bcryptHash" entries. Malformed entries are skipped.
func ParseAPIKeys(raw string) []APIKey {
	var keys []APIKey
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		userID, hash, ok := strings.Cut(entry, ":")
		if !ok || userID == "" || hash == "" {
			continue
		}
		keys = append(keys, APIKey{UserID: userID, Hash: []byte(hash)})
	}
	return keys
}

// APIKeyAuth authenticates requests carrying an x-api-key header.
// Requests without the header, or with an unknown key, continue to the JWT middleware.
func APIKeyAuth(keys []APIKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(keys) == 0 {
			c.Next()
			return
		}

		presented := c.GetHeader(APIKeyHeader)
		if presented == "" {
			c.Next()
			return
		}

		for _, key := range keys {
			if bcrypt.CompareHashAndPassword(key.Hash, []byte(presented)) == nil {
				setAuthenticatedUser(c, key.UserID, AuthMethodAPIKey)
				c.Next()
				return
			}
		}

		GetLoggerFromCtx(c.Request.Context()).Warn("Unknown API key presented")
		c.Next()
	}
}
