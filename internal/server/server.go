// Package server exposes pathfinding and field of view over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tilekit/gridnav"
	"github.com/tilekit/gridnav/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNoMap is returned by map-dependent endpoints before a map is loaded.
	ErrNoMap     = errors.New("no map loaded. PUT /map first")
	ErrNoRoadmap = errors.New("roadmap not built. POST /roadmap first")
)

const shutdownTimeout = 5 * time.Second

// Server holds the active map and the roadmap built over it.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	mu      sync.RWMutex
	grid    *gridnav.GridMap
	roadmap *gridnav.Graph
}

// New creates a Server with no map loaded.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// SetMap replaces the active map and discards any roadmap built for the old one.
func (s *Server) SetMap(m *gridnav.GridMap) {
	s.mu.Lock()
	s.grid = m
	s.roadmap = nil
	s.mu.Unlock()
}

func (s *Server) snapshot() (*gridnav.GridMap, *gridnav.Graph) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid, s.roadmap
}

// Router builds the gin engine. Background middleware work stops when ctx is
// cancelled.
func (s *Server) Router(ctx context.Context) *gin.Engine {
	r := gin.New()
	r.Use(TraceID(), Logger(s.logger), Recovery(s.logger), CORS(s.cfg.Server.AllowedOrigins))
	if s.cfg.Server.RateLimitRPS > 0 {
		r.Use(RateLimit(rate.Limit(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, ctx.Done()))
	}

	r.GET("/health", s.Health)
	r.PUT("/map", s.PutMap)
	r.GET("/map", s.GetMap)
	r.POST("/route", s.Route)
	r.POST("/fov", s.FOV)
	r.POST("/line", s.Line)
	r.POST("/roadmap", s.BuildRoadmap)
	r.GET("/roadmap/lines", s.RoadmapLines)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if !s.cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(ctx),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
