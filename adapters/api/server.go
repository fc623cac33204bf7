// Package api serves the detection services over HTTP/JSON.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"radartools/internal"
	"radartools/ports"
)

// Server routes HTTP requests to the detection services
type Server struct {
	router    *gin.Engine
	detection ports.DetectionCalculator
	sweeps    ports.SweepRunner
	selfCheck ports.SelfChecker
	logger    *internal.Logger
	timeout   time.Duration
}

// NewServer creates a server with its routes registered. A zero timeout
// leaves request contexts untouched.
func NewServer(detection ports.DetectionCalculator, sweeps ports.SweepRunner, selfCheck ports.SelfChecker,
	logger *internal.Logger, timeout time.Duration) *Server {
	s := &Server{
		router:    gin.New(),
		detection: detection,
		sweeps:    sweeps,
		selfCheck: selfCheck,
		logger:    logger.With("API"),
		timeout:   timeout,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	if s.timeout > 0 {
		s.router.Use(s.requestTimeout())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.GET("/threshold", s.handleThreshold)
	v1.POST("/evaluate", s.handleEvaluate)
	v1.POST("/sweep", s.handleSweep)
	v1.POST("/required-snr", s.handleRequiredSNR)
	v1.GET("/selfcheck", s.handleSelfCheck)
}

// requestTimeout bounds each request's context so long sweeps are cancelled
func (s *Server) requestTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
