package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/internal/errors"
)

// APIKeyHeader carries the shared secret of the frontend.
const APIKeyHeader = "x-api-key"

type AuthMiddleware struct {
	apiKey string
	bypass bool
}

// NewAuthMiddleware checks the shared key. The check is skipped only when the
// server runs in development with DISABLE_API_KEY=true.
func NewAuthMiddleware(apiCfg config.APIConfig, serverCfg config.ServerConfig) *AuthMiddleware {
	return &AuthMiddleware{
		apiKey: apiCfg.Key,
		bypass: serverCfg.IsDevelopment() && apiCfg.DisableKeyAuth,
	}
}

// RequireAPIKey answers 401 when the header is missing and 403 when it does
// not match.
func (m *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if m.bypass {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			log.Warn("Missing API key", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			log.Warn("Invalid API key", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Forbidden(c, "")
			return
		}

		c.Next()
	}
}
