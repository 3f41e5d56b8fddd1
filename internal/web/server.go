// Package web exposes the HTTP API: catalog search and refresh, cached
// course details, and the schedule derivation/export endpoints the frontend
// calls whenever the staged-course set changes.
package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/cors"

	"github.com/chengus/nyu-course-scraper/internal/bulletin"
	"github.com/chengus/nyu-course-scraper/internal/catalog"
	"github.com/chengus/nyu-course-scraper/internal/config"
	applog "github.com/chengus/nyu-course-scraper/internal/log"
	"github.com/chengus/nyu-course-scraper/internal/store"
)

// Server holds the API's collaborators and its router.
type Server struct {
	cfg       *config.Config
	db        *store.Store
	client    *bulletin.Client
	refresher *catalog.Refresher

	// detailsCache is the in-process tier over the SQLite details cache; it
	// absorbs repeated clicks on the same course without a DB round trip.
	detailsCache *gocache.Cache

	engine *gin.Engine
}

// NewServer builds the router and all route handlers.
func NewServer(cfg *config.Config, db *store.Store, client *bulletin.Client, refresher *catalog.Refresher) *Server {
	ttl := time.Duration(cfg.DetailCacheTTLMinutes) * time.Minute

	s := &Server{
		cfg:          cfg,
		db:           db,
		client:       client,
		refresher:    refresher,
		detailsCache: gocache.New(ttl, 2*ttl),
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger())
	if s.basicAuthEnabled() {
		s.engine.Use(s.basicAuthMiddleware())
	}

	s.registerRoutes()
	return s
}

// Handler returns the full handler chain, with CORS outermost so the browser
// frontend (a separate origin during development) can call the API.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(s.engine)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.GET("/search", s.handleSearch)
		api.POST("/course-details", s.handleCourseDetails)
		api.POST("/update-database", s.handleUpdateDatabase)
		api.GET("/database-status", s.handleDatabaseStatus)

		api.POST("/schedule/events", s.handleScheduleEvents)
		api.POST("/schedule/export", s.handleScheduleExport)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards every route except /health.
func (s *Server) basicAuthMiddleware() gin.HandlerFunc {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			c.Header("WWW-Authenticate", `Basic realm="courseapi", charset="UTF-8"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		applog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
