// Package api provides the HTTP API server for microtosca.
// It uses the Echo framework to serve REST endpoints over a single
// architecture model and a WebSocket feed of model change events.
package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"evalgo.org/microtosca/internal/auth"
	"evalgo.org/microtosca/internal/config"
	"evalgo.org/microtosca/internal/integrity"
	"evalgo.org/microtosca/internal/scheduler"
	"evalgo.org/microtosca/internal/validation"
	"evalgo.org/microtosca/internal/version"
	"evalgo.org/microtosca/models"
)

// Server represents the microtosca API server.
//
// The model is not safe for concurrent use, so every handler holds mu: read
// handlers take the read lock and mutating handlers the write lock for the
// whole operation, cascading node removal included.
type Server struct {
	echo       *echo.Echo
	config     *config.Config
	wsHub      *Hub
	authMiddle *auth.Middleware
	validator  *validation.Validator
	scanner    *integrity.Scanner
	monitor    *scheduler.Scheduler
	logger     *log.Logger

	// lastScore is the health score of the previous background scan; only
	// the monitor goroutine touches it
	lastScore int

	mu    sync.RWMutex
	model *models.Model
}

// debugLog logs a message only if debug mode is enabled in config
func (s *Server) debugLog(format string, args ...interface{}) {
	if s.config.Server.Debug {
		s.logger.Printf(format, args...)
	}
}

// New creates a new API server serving model. A nil logger discards output.
func New(cfg *config.Config, model *models.Model, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.Debug
	e.HTTPErrorHandler = HTTPErrorHandler

	hub := NewHub(logger)

	server := &Server{
		echo:       e,
		config:     cfg,
		wsHub:      hub,
		authMiddle: auth.NewMiddleware(cfg),
		validator:  validation.New(),
		scanner:    integrity.NewScanner(integrity.DefaultOptions(), logger),
		logger:     logger,
		lastScore:  -1,
		model:      model,
	}

	if cfg.Integrity.ScanInterval > 0 {
		server.monitor = scheduler.New("integrity", cfg.Integrity.ScanInterval, server.scheduledScan, logger)
	}

	// Start WebSocket hub in background
	go hub.Run()

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
		Output: s.logger.Writer(),
	}))

	s.echo.Use(middleware.Recover())

	s.echo.Use(SecurityHeaders)

	if len(s.config.Security.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.Security.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	s.echo.Use(middleware.RequestID())

	if s.config.Security.RateLimit > 0 {
		s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
			rate.Limit(s.config.Security.RateLimit),
		)))
	}

	s.echo.Use(ValidateContentType)
	s.echo.Use(ValidateAcceptHeader)
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/version", s.getVersion)

	v1 := s.echo.Group("/api/v1")
	v1.Use(ValidateQueryParams)

	// Model routes
	model := v1.Group("/model")
	model.GET("", s.getModel)
	model.GET("/document", s.exportDocument)
	model.PUT("/document", s.replaceDocument, s.authMiddle.RequireWrite)

	// Node routes
	nodes := v1.Group("/nodes")
	nodes.GET("", s.listNodes)
	nodes.POST("", s.createNode, s.authMiddle.RequireWrite)
	nodes.GET("/:name", s.getNode, ValidateNodeName)
	nodes.DELETE("/:name", s.deleteNode, ValidateNodeName, s.authMiddle.RequireWrite)
	nodes.GET("/:name/interactions", s.listOutgoing, ValidateNodeName)
	nodes.GET("/:name/incoming", s.listIncoming, ValidateNodeName)

	// Interaction routes
	interactions := v1.Group("/interactions")
	interactions.GET("", s.listInteractions)
	interactions.POST("", s.createInteraction, s.authMiddle.RequireWrite)
	interactions.DELETE("", s.deleteInteraction, s.authMiddle.RequireWrite)

	v1.GET("/policy", s.getPolicy)
	v1.POST("/validate", s.validateDocument)

	// Integrity routes
	v1.GET("/integrity", s.scanIntegrity)
	v1.POST("/integrity/repair", s.repairIntegrity, s.authMiddle.RequireWrite)

	// WebSocket routes
	ws := v1.Group("/ws")
	ws.GET("/graph", s.HandleWebSocket)
	ws.GET("/stats", s.GetWebSocketStats)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := s.config.Server.Address()

	s.mu.RLock()
	name, size := s.model.Name(), s.model.Len()
	s.mu.RUnlock()

	s.logger.Printf("Starting microtosca API server on http://%s", addr)
	s.logger.Printf("Model: %s (%d nodes), auth: %v, debug: %v", name, size,
		s.config.Security.AuthEnabled, s.config.Server.Debug)

	if s.monitor != nil {
		s.monitor.Start()
	}

	s.echo.Server.ReadTimeout = s.config.Server.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.Server.WriteTimeout

	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Printf("Shutting down microtosca API server...")

	if s.monitor != nil {
		s.monitor.Stop()
	}
	s.wsHub.Stop()

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.logger.Printf("Server shutdown complete")
	return nil
}

// healthCheck handles health check requests.
func (s *Server) healthCheck(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "microtosca",
		"version": version.Version,
		"model":   s.model.Name(),
		"nodes":   s.model.Len(),
		"clients": s.wsHub.ClientCount(),
	})
}

func (s *Server) getVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, version.Get())
}

// BroadcastGraphEvent broadcasts a model change event to all WebSocket clients
func (s *Server) BroadcastGraphEvent(eventType GraphEventType, data interface{}) {
	s.debugLog("Broadcasting %s event to %d WebSocket clients", eventType, s.wsHub.ClientCount())
	event := GraphEvent{
		Type: eventType,
		Data: data,
	}
	if err := s.wsHub.BroadcastEvent(event); err != nil {
		s.logger.Printf("ERROR: Failed to broadcast event: %v", err)
	}
}

// ServeHTTP allows Server to implement http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
