package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	signInPath    = "/auth/signin"
	dashboardPath = "/dashboard"
)

// Redirects guards page routes. Unauthenticated visitors to the dashboard are
// sent to sign-in with a callbackUrl; signed-in visitors to the landing or
// sign-in page go to the dashboard. API routes always pass through.
func Redirects() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			c.Next()
			return
		}

		authed := IsAuthenticated(c)
		switch {
		case !authed && isDashboardPath(path):
			target := signInPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusTemporaryRedirect, target)
			c.Abort()
			return
		case authed && (path == "/" || path == signInPath):
			c.Redirect(http.StatusTemporaryRedirect, dashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func isDashboardPath(path string) bool {
	return path == dashboardPath || strings.HasPrefix(path, dashboardPath+"/")
}
