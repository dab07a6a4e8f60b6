package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/step-challenge-api/internal/handler"
	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	"github.com/noah-isme/step-challenge-api/internal/service"
	"github.com/noah-isme/step-challenge-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/step-challenge-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/step-challenge-api/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(tokenString string) (*models.AdminClaims, error)
}

// Options configures the route table.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	MaxBodyBytes   int64
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         tokenValidator
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Submission  *handler.SubmissionHandler
	Leaderboard *handler.LeaderboardHandler
	Admin       *handler.AdminHandler
	Auth        *handler.AuthHandler
	Metrics     *handler.MetricsHandler
}

// New builds the gin engine with global middleware and every route.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)

	// Public
	api.POST("/submissions", middleware.BodyLimit(opts.MaxBodyBytes), h.Submission.Submit)
	api.GET("/students/:id/profile", h.Submission.Profile)
	api.GET("/catalog", h.Submission.Catalog)
	api.GET("/leaderboards/overall", h.Leaderboard.Overall)
	api.GET("/leaderboards/sessions/:session", h.Leaderboard.BySession)
	api.GET("/leaderboards/campuses", h.Leaderboard.Campuses)
	api.GET("/stats", h.Leaderboard.Stats)
	api.POST("/admin/login", middleware.BodyLimit(64*1024), h.Auth.Login)

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(opts.Tokens))
	admin.GET("/session", h.Auth.Session)
	admin.GET("/students", h.Admin.List)
	admin.DELETE("/students/:id", h.Admin.DeleteStudent)
	admin.GET("/students/:id/days/:date", h.Admin.Screenshot)
	admin.DELETE("/students/:id/days/:date", h.Admin.RetractDay)
	admin.GET("/ledger/drift", h.Admin.Drift)
	admin.GET("/exports/students", h.Admin.ExportStudents)
	admin.GET("/exports/campuses", h.Admin.ExportCampuses)
	admin.GET("/metrics", h.Metrics.Snapshot)

	return r
}
