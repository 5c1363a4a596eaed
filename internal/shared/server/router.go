package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talexus-backend/internal/account"
	"talexus-backend/internal/coverletters"
	"talexus-backend/internal/documents"
	"talexus-backend/internal/resumes"
	"talexus-backend/internal/shared/config"
	"talexus-backend/internal/shared/metrics"
	"talexus-backend/internal/shared/server/middleware"
	"talexus-backend/internal/shared/server/respond"
	"talexus-backend/internal/uploads"
	"talexus-backend/internal/users"
)

// RouterDeps carries the handlers wired into the HTTP router.
type RouterDeps struct {
	Config             config.Config
	DocumentHandler    *documents.Handler
	ResumeHandler      *resumes.Handler
	CoverLetterHandler *coverletters.Handler
	AccountHandler     *account.Handler
	UserHandler        *users.Handler
	UploadsHandler     *uploads.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	api.Use(
		middleware.Identity(),
		middleware.RateLimit(rateLimitConfig()),
	)

	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.CoverLetterHandler != nil {
		deps.CoverLetterHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler.Enabled() {
		deps.UploadsHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimitConfig throttles LLM-backed endpoints harder than reads.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 10, Burst: 20},
			"POLLING": {Rate: 30, Burst: 60},
			"LLM":     {Rate: 0.5, Burst: 3},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && strings.HasSuffix(c.FullPath(), "/status") {
				return "POLLING"
			}
			if c.Request.Method == http.MethodPost &&
				(strings.HasSuffix(c.FullPath(), "/cover-letters") || strings.HasSuffix(c.FullPath(), "/documents")) {
				return "LLM"
			}
			return "DEFAULT"
		},
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
