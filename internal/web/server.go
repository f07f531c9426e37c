// Package web serves the read-side HTTP API: latest snapshots, baselines,
// alert history, and Prometheus metrics. It never writes; the collection
// cycle owns all mutation.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"liquidity-radar/internal/config"
)

// Server wraps the HTTP listener around the API handler.
type Server struct {
	cfg     config.WebConfig
	handler *Handler
	logger  zerolog.Logger
	srv     *http.Server
}

// NewServer builds the server and its routes.
func NewServer(cfg config.WebConfig, handler *Handler, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With().Str("component", "web").Logger(),
	}

	s.srv = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", s.handler.Health)
		api.GET("/overview", s.handler.Overview)
		api.GET("/history", s.handler.History)
		api.GET("/baselines", s.handler.Baselines)
		api.GET("/alerts", s.handler.Alerts)
	}
	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.cfg.Listen).Msg("http server starting")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}
