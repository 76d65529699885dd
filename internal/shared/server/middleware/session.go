package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/auth"
	"resume-tailor/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// SessionConfig configures identity resolution.
type SessionConfig struct {
	Verifier   TokenVerifier
	CookieName string
}

// Session resolves the caller's identity from a bearer token or the session
// cookie. It never rejects a request; RequireUser does that for API routes.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "session_token"
	}
	return func(c *gin.Context) {
		if cfg.Verifier == nil {
			c.Next()
			return
		}
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}
		if token != "" {
			if claims, err := cfg.Verifier.Verify(token); err == nil {
				c.Set(userIDKey, claims.UserID())
				if claims.Email != "" {
					c.Set(userEmailKey, claims.Email)
				}
				if claims.Name != "" {
					c.Set(userNameKey, claims.Name)
				}
				if claims.Picture != "" {
					c.Set(userPictureKey, claims.Picture)
				}
			}
		}
		c.Next()
	}
}

// RequireUser rejects requests without a resolved identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// IsAuthenticated reports whether Session resolved an identity.
func IsAuthenticated(c *gin.Context) bool {
	return UserIDFromContext(c) != ""
}

// UserIDFromContext fetches the user ID set by the session middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the session middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the session middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the session middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
