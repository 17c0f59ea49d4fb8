package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	configparser "github.com/orgoj/asynclog/internal/config"
	"github.com/orgoj/asynclog/internal/handler"
	"github.com/orgoj/asynclog/internal/logger"
)

// Dependencies holds the dependencies needed by the server.
type Dependencies struct {
	Config        *configparser.Config
	LoggerManager *logger.Manager
	AppLogger     *logger.AppLogger
}

// Server exposes read-only status of the registered loggers over HTTP.
// It never accepts log records.
type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	config        *configparser.Config
	loggerManager *logger.Manager
	appLogger     *logger.AppLogger
}

// NewServer creates a new server instance with its dependencies.
func NewServer(deps Dependencies) *Server {
	// Validate dependencies
	if deps.Config == nil {
		panic("server: Config dependency cannot be nil")
	}
	if deps.LoggerManager == nil {
		panic("server: LoggerManager dependency cannot be nil")
	}
	if deps.AppLogger == nil {
		deps.AppLogger = logger.GetAppLogger()
	}

	// Set Gin mode
	if deps.Config.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router:        router,
		config:        deps.Config,
		loggerManager: deps.LoggerManager,
		appLogger:     deps.AppLogger,
	}
	server.setupRoutes()
	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", deps.Config.Server.Host, deps.Config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		s.appLogger.Health("Health endpoint called with method %s", c.Request.Method)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.HEAD("/health", func(c *gin.Context) {
		s.appLogger.Health("Health endpoint called with method %s", c.Request.Method)
		c.Status(http.StatusOK)
	})

	s.router.GET("/version", handler.VersionHandler)

	deps := handler.LoggersHandlerDeps{LoggerManager: s.loggerManager}
	s.router.GET("/loggers", handler.NewListLoggersHandler(deps))
	s.router.GET("/loggers/:name", handler.NewGetLoggerHandler(deps))
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.appLogger.Info("Starting status server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	return nil
}
