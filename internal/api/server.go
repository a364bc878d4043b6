// Package api exposes the analyses over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"gotabstat/adapters/datareadiness/coercer"
	"gotabstat/app"
	"gotabstat/internal"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// Options tunes the server
type Options struct {
	// MaxConcurrent bounds analysis and profiling work in flight. A request for all modes
	// weighs as much as one request per mode.
	MaxConcurrent int64
	// MaxUploadBytes caps request bodies.
	MaxUploadBytes int64
	// Coercer converts JSON table values into cells.
	Coercer *coercer.TypeCoercer
}

// DefaultOptions returns the standard limits
func DefaultOptions() Options {
	return Options{
		MaxConcurrent:  4,
		MaxUploadBytes: 32 << 20,
	}
}

// Server serves the analysis API
type Server struct {
	router    *gin.Engine
	service   *app.AnalysisService
	coercer   *coercer.TypeCoercer
	sem       *semaphore.Weighted
	capacity  int64
	maxUpload int64
	logger    *internal.Logger
}

// NewServer creates a server with its routes registered
func NewServer(service *app.AnalysisService, opts Options, logger *internal.Logger) *Server {
	defaults := DefaultOptions()
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaults.MaxConcurrent
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if opts.Coercer == nil {
		opts.Coercer = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		coercer:   opts.Coercer,
		sem:       semaphore.NewWeighted(opts.MaxConcurrent),
		capacity:  opts.MaxConcurrent,
		maxUpload: opts.MaxUploadBytes,
		logger:    logger.WithComponent("API"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.logRequests())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyzeAll)
	v1.POST("/analyze/:mode", s.handleAnalyze)
	v1.POST("/inspect", s.handleInspect)
	v1.POST("/sheets", s.handleSheets)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// acquire reserves weight units of analysis capacity, waiting until ctx is done
func (s *Server) acquire(ctx context.Context, weight int64) (func(), error) {
	if weight > s.capacity {
		weight = s.capacity
	}
	if err := s.sem.Acquire(ctx, weight); err != nil {
		return nil, err
	}
	return func() { s.sem.Release(weight) }, nil
}
