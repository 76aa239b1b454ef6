package server

import (
	"context"
	"net/http"
	"time"

	"wellness-planner/internal/access"
	"wellness-planner/internal/config"
	"wellness-planner/internal/delivery"
	"wellness-planner/internal/logger"
	"wellness-planner/internal/metrics"
	"wellness-planner/internal/planner"
	"wellness-planner/internal/render"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanService is the resolver surface used by the HTTP handlers.
type PlanService interface {
	Resolve(ctx context.Context, req planner.Request) (*planner.Resolution, error)
	GenerateFor(ctx context.Context, date string, force bool) (*planner.Plan, error)
	Exists(ctx context.Context, date string) (bool, error)
	ClearToday(ctx context.Context) (bool, error)
	Purge(ctx context.Context, retentionDays int) (int64, string, error)
	Recent(ctx context.Context, limit int) ([]planner.Plan, error)
	Today() string
	Mode() planner.Mode
}

// JobRunner runs the daily delivery job.
type JobRunner interface {
	Run(ctx context.Context) (*delivery.Report, error)
}

// JobFunc adapts a function to JobRunner.
type JobFunc func(ctx context.Context) (*delivery.Report, error)

func (f JobFunc) Run(ctx context.Context) (*delivery.Report, error) { return f(ctx) }

// UsageReporter summarizes recent LLM usage.
type UsageReporter interface {
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Deps are the collaborators of the HTTP server. Job and Usage may be nil.
type Deps struct {
	Config  *config.Config
	Plans   PlanService
	Job     JobRunner
	Usage   UsageReporter
	Premium *access.PremiumGate
	Log     *logger.Logger
}

// Server is the HTTP surface of the planner.
type Server struct {
	cfg     *config.Config
	plans   PlanService
	job     JobRunner
	usage   UsageReporter
	premium *access.PremiumGate
	log     *logger.Logger
	router  *gin.Engine
}

// New wires routes and middleware.
func New(d Deps) *Server {
	premium := d.Premium
	if premium == nil {
		premium = access.NewPremiumGate(d.Config.PremiumSigningSecret)
	}

	router := gin.New()
	s := &Server{
		cfg:     d.Config,
		plans:   d.Plans,
		job:     d.Job,
		usage:   d.Usage,
		premium: premium,
		log:     d.Log.With("component", "HTTPServer"),
		router:  router,
	}

	router.Use(gin.Recovery(), s.requestID(), s.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:   []string{"X-Plan-Source", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))
	router.SetHTMLTemplate(render.Templates())

	// Public
	router.GET("/", s.handleDashboard)
	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/plan", s.handleGetPlan)
		api.GET("/plan/pdf", s.handlePlanPDF)
		api.GET("/debug", s.handleDebug)
	}

	// Protected
	admin := api.Group("/admin", s.requireBearer(config.EnvAdminSecret, d.Config.AdminSecret))
	{
		admin.POST("/generate-plan", s.handleGeneratePlan)
		admin.GET("/generate-plan", s.handlePlanExists)
		admin.POST("/clear-today", s.handleClearToday)
		admin.POST("/cleanup", s.handleCleanup)
	}

	api.GET("/cron/daily-job", s.handleCronInfo)
	api.POST("/cron/daily-job", s.requireBearer(config.EnvCronSecret, d.Config.CronSecret), s.handleDailyJob)

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", c.GetString("request_id"),
		)
	}
}

// requireBearer fails with 500 when the secret is not configured and 401 on mismatch.
func (s *Server) requireBearer(envName, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": envName + " environment variable not set"})
			return
		}
		if !access.BearerMatches(c.GetHeader("Authorization"), secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
