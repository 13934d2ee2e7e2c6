package auth

import (
	"net/http"
	"strings"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ctxUserID     = "user_id"
	sessionUserID = "user_id"
)

// Middleware resolves the acting user from a Bearer token, a token query
// parameter (browsers cannot set headers on WebSocket upgrades) or the
// cookie session, in that order. It requires the sessions middleware.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); h != "" {
			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   "invalid authorization header, expected: Bearer <token>",
				})
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
		}

		if token != "" {
			claims, err := a.Validate(token)
			if err != nil {
				log.Debug().Err(err).Str("module", "auth").Msg("token rejected")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"error":   "invalid or expired token",
				})
				return
			}
			c.Set(ctxUserID, claims.UserID)
			c.Next()
			return
		}

		if v, ok := sessions.Default(c).Get(sessionUserID).(string); ok && v != "" {
			c.Set(ctxUserID, domain.UserID(v))
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "authentication required",
		})
	}
}

// SaveSession remembers uid in the cookie session.
func SaveSession(c *gin.Context, uid domain.UserID) error {
	s := sessions.Default(c)
	s.Set(sessionUserID, string(uid))
	return s.Save()
}

// GetUserID retrieves the acting user from the context
func GetUserID(c *gin.Context) (domain.UserID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return "", false
	}
	uid, ok := v.(domain.UserID)
	return uid, ok
}
