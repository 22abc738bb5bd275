// Package api exposes the public HTTP surface: image analysis, health
// endpoints, and Prometheus metrics.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emojivision/mosaic/pkg/analyzer"
	"github.com/emojivision/mosaic/pkg/config"
	"github.com/emojivision/mosaic/pkg/ingest"
	"github.com/emojivision/mosaic/pkg/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	store    *ingest.Store
	health   *analyzer.HealthMonitor

	httpServer *http.Server
}

// NewServer creates the API server and its route table.
func NewServer(cfg *config.Config, p *pipeline.Pipeline, store *ingest.Store, health *analyzer.HealthMonitor) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: p,
		store:    store,
		health:   health,
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.Use(securityHeaders())
	r.Use(requestMetrics())

	r.GET("/analyze", s.analyzeGet)
	r.POST("/analyze", s.analyzePost)
	r.GET("/health", s.healthHandler)
	r.GET("/services/health", s.servicesHealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Downloaded and uploaded images are served back to distributed analyzers.
	r.Static("/uploads", s.cfg.Server.UploadDir)

	return r
}

// Start begins serving on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
