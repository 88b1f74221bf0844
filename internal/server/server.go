package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/notify"
	"github.com/balkashynov/punch/internal/report"
	"github.com/balkashynov/punch/internal/tracker"
)

// TaskStore is the task persistence used by the task routes
type TaskStore interface {
	CreateTask(ctx context.Context, req db.CreateTaskRequest) (*models.Task, error)
	GetTasks(ctx context.Context, ownerID uint) ([]models.Task, error)
}

// Options wires the server's collaborators
type Options struct {
	Trackers *tracker.Service
	Reports  *report.Service
	Tasks    TaskStore
	Hub      *notify.Hub
	Logger   *slog.Logger

	JWTSecret []byte
	// DefaultScope applies to tokens that carry no scope
	DefaultScope string
	CORSOrigins  []string
	// Per-user limit on mutating requests; zero disables it
	RateLimit float64
	RateBurst int
	// SSE keepalive interval
	Keepalive time.Duration
	// Ready reports whether dependencies are reachable
	Ready func() error
	Now   func() time.Time
}

// Server provides the HTTP API for time tracking
type Server struct {
	engine    *gin.Engine
	trackers  *tracker.Service
	reports   *report.Service
	tasks     TaskStore
	hub       *notify.Hub
	logger    *slog.Logger
	secret    []byte
	scope     string
	limiter   *userLimiter
	keepalive time.Duration
	ready     func() error
	now       func() time.Time
}

// New constructs the HTTP server with routes and middleware configured.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Keepalive <= 0 {
		opts.Keepalive = 25 * time.Second
	}
	if opts.Hub == nil {
		opts.Hub = notify.NewHub(16, opts.Logger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(accessLog(opts.Logger))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	srv := &Server{
		engine:    router,
		trackers:  opts.Trackers,
		reports:   opts.Reports,
		tasks:     opts.Tasks,
		hub:       opts.Hub,
		logger:    opts.Logger,
		secret:    opts.JWTSecret,
		scope:     opts.DefaultScope,
		limiter:   newUserLimiter(opts.RateLimit, opts.RateBurst),
		keepalive: opts.Keepalive,
		ready:     opts.Ready,
		now:       opts.Now,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	api := s.engine.Group("/api", s.authRequired())
	{
		trackers := api.Group("/trackers")
		{
			trackers.GET("", s.handleListTrackers)
			trackers.GET("/active", s.handleActiveTracker)
			trackers.GET("/:id", s.handleGetTracker)
			trackers.POST("/clock-in", s.limit(), s.handleClockIn)
			trackers.POST("/:id/clock-out", s.limit(), s.handleClockOut)
			trackers.DELETE("/:id", s.limit(), s.handleDeleteTracker)
			trackers.POST("/:id/items", s.limit(), s.handleAttachItem)
			trackers.DELETE("/:id/items/:itemId", s.limit(), s.handleRemoveItem)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.limit(), s.handleCreateTask)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/daily", s.handleDailyReport)
			reports.GET("/weekly", s.handleWeeklyReport)
			reports.GET("/monthly", s.handleMonthlyReport)
		}

		api.GET("/events", s.handleEvents)
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready(); err != nil {
			s.logger.Error("readiness check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// parseID converts a path parameter to a row id with error handling.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return uint(id), true
}
