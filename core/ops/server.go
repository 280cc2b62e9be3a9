// Package ops serves the operational HTTP surface: liveness and Prometheus metrics.
package ops

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qazobot/qazobot/core/buildinfo"
	"github.com/qazobot/qazobot/core/logger"
)

// Check reports the health of one dependency; nil means healthy.
type Check func(ctx context.Context) error

// Options configures the ops server.
type Options struct {
	Listen string
	Checks map[string]Check
	// CheckTimeout bounds a single /healthz evaluation; 0 -> 2s.
	CheckTimeout time.Duration
}

// Server exposes /healthz and /metrics over gin.
type Server struct {
	opts   Options
	engine *gin.Engine
}

// New builds the router. It does not start listening.
func New(opts Options) *Server {
	if opts.CheckTimeout <= 0 {
		opts.CheckTimeout = 2 * time.Second
	}
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog())

	s := &Server{opts: opts, engine: engine}
	engine.GET("/healthz", s.health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log := logger.Component("ops")

	errCh := make(chan error, 1)
	go func() {
		log.Info("ops server listening", slog.String("event", "ops.listen"), slog.String("listen", s.opts.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("ops server shutdown", slog.String("event", "ops.shutdown"), slog.String("status", "fail"), logger.Err(err))
		return err
	}
	log.Info("ops server stopped", slog.String("event", "ops.shutdown"), slog.String("status", "ok"))
	return nil
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.CheckTimeout)
	defer cancel()

	names := make([]string, 0, len(s.opts.Checks))
	for name := range s.opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := gin.H{}
	for _, name := range names {
		if err := s.opts.Checks[name](ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	body := gin.H{"version": buildinfo.String()}
	if len(failed) > 0 {
		body["status"] = "degraded"
		body["failed"] = failed
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	c.JSON(http.StatusOK, body)
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug(c.Request.Context(), "ops", "ops.request",
			slog.String("path", c.FullPath()),
			slog.Int("code", c.Writer.Status()),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}
