package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/applications"
	googleauth "resume-tailor/internal/auth"
	"resume-tailor/internal/billing"
	"resume-tailor/internal/feedback"
	"resume-tailor/internal/joburl"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/users"
)

// DefaultLLMRate allows a burst of five model-backed calls, refilling one
// every six seconds.
var DefaultLLMRate = middleware.RateLimitRule{Rate: 1.0 / 6.0, Burst: 5}

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config       config.Config
	Verifier     middleware.TokenVerifier
	RateLimiter  *middleware.RateLimiter
	LLMRate      *middleware.RateLimitRule
	GoogleAuth   *googleauth.GoogleService
	Users        *users.Handler
	Resumes      *resumes.Handler
	Applications *applications.Handler
	JobURL       *joburl.Handler
	Feedback     *feedback.Handler
	Billing      *billing.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(middleware.SessionConfig{
			Verifier:   deps.Verifier,
			CookieName: deps.Config.SessionCookieName,
		}),
		middleware.Redirects(),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Billing != nil {
		deps.Billing.RegisterWebhook(api)
	}

	rule := DefaultLLMRate
	if deps.LLMRate != nil {
		rule = *deps.LLMRate
	}
	protected := api.Group("",
		middleware.RequireUser(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{middleware.GroupLLM: rule},
			GroupFor: middleware.LLMRoutes(
				"POST /api/resumes/upload",
				"GET /api/resumes/:id/analyze",
				"POST /api/resumes/:id/analyze",
				"POST /api/resumes/:id/tailor",
				"POST /api/job-url/parse",
			),
			Limiter: deps.RateLimiter,
		}),
	)
	if deps.Users != nil {
		deps.Users.RegisterRoutes(protected)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(protected)
	}
	if deps.Applications != nil {
		deps.Applications.RegisterRoutes(protected)
	}
	if deps.JobURL != nil {
		deps.JobURL.RegisterRoutes(protected)
	}
	if deps.Feedback != nil {
		deps.Feedback.RegisterRoutes(protected)
	}
	if deps.Billing != nil {
		deps.Billing.RegisterRoutes(protected)
	}

	page := pageHandler(deps.Config.StaticDir)
	r.GET("/", page)
	r.GET("/auth/signin", page)
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
			return
		}
		page(c)
	})

	return r
}

// pageHandler serves the single-page frontend's index.html. Without a static
// build it reports the page path so the redirect rules stay observable.
func pageHandler(staticDir string) gin.HandlerFunc {
	index := ""
	if staticDir != "" {
		index = filepath.Join(staticDir, "index.html")
	}
	return func(c *gin.Context) {
		if index != "" {
			if _, err := os.Stat(index); err == nil {
				c.File(index)
				return
			}
		}
		respond.OK(c, gin.H{"page": c.Request.URL.Path})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
