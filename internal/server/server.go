package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/thumbnailer/internal/logging"
	"github.com/ironsheep/thumbnailer/internal/thumbcache"
)

const (
	// HeaderURIPrefix is prepended to the :uri path parameter.
	HeaderURIPrefix = "Uri-Prefix"

	// HeaderCacheStatus reports Hit or Missed.
	HeaderCacheStatus = "X-Thumbnailer-Cache"

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Service *thumbcache.Service

	// ContentAge is sent as Cache-Control max-age.
	ContentAge time.Duration

	// Debug returns error details to the client.
	Debug bool

	Logger logging.Interface

	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to the thumbnail service.
type Server struct {
	svc        *thumbcache.Service
	contentAge time.Duration
	debug      bool
	logger     logging.Interface
	engine     *gin.Engine
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		svc:        opts.Service,
		contentAge: opts.ContentAge,
		debug:      opts.Debug,
		logger:     opts.Logger,
	}

	engine := gin.New()
	// Route on the escaped path so an encoded "/" inside :uri stays in one
	// segment; handlers unescape the value themselves.
	engine.UseRawPath = true
	engine.UnescapePathValues = false
	engine.Use(gin.Recovery(), requestLogger(s.logger))

	engine.GET("/thumbnail/:uri/long-edge/:long_edge_pixels", s.handleThumbnail)
	engine.GET("/fit/:uri/:width_pixels/:height_pixels", s.handleFit)
	engine.GET("/info/:uri", s.handleInfo)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	s.engine = engine
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger logging.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.
			WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.EscapedPath()).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start).String()).
			WithField("client_ip", c.ClientIP())
		if cache := c.Writer.Header().Get(HeaderCacheStatus); cache != "" {
			log = log.WithField("cache", cache)
		}

		if len(c.Errors) > 0 {
			log.WithError(c.Errors.Last().Err).Error("HTTP request failed")
			return
		}
		log.Info("HTTP request")
	}
}
