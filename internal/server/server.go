// Package server hosts the dashboard: a small JSON API over the
// derived series plus the HTML shell that renders them.
package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coinboard/internal/config"
	"coinboard/internal/loader"
	"coinboard/internal/logger"
)

//go:embed templates/*.tmpl
var embeddedFS embed.FS

// Server hosts the Gin-powered dashboard.
type Server struct {
	cfg        *config.Config
	log        *logger.Log
	cache      *loader.Cache
	sampler    *resourceSampler
	httpServer *http.Server
}

func New(cfg *config.Config, log *logger.Log, cache *loader.Cache) *Server {
	sampler := newResourceSampler(
		cfg.Resources.History,
		time.Duration(cfg.Resources.IntervalSeconds)*time.Second,
		"/",
		log,
	)
	return &Server{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		sampler: sampler,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled
// or the server fails. Shutdown drains in-flight requests for a few
// seconds before giving up.
func (s *Server) Run(ctx context.Context) error {
	router, err := s.buildRouter()
	if err != nil {
		return err
	}

	s.sampler.start(ctx)
	defer s.sampler.stop()

	s.httpServer = &http.Server{
		Addr:    normalizeAddress(s.cfg.Server.Address),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.WithComponent("server").WithFields(logger.Fields{
		"address": s.httpServer.Addr,
	}).Info("dashboard listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return err
	}
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	router.Use(
		RequestID(),
		AccessLog(s.log),
		RateLimit(s.cfg.Server.RateLimit, s.cfg.Server.RateBurst),
	)

	tmpl := template.Must(template.New("dashboard").ParseFS(embeddedFS, "templates/index.tmpl"))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/meta", s.handleMeta)
		api.GET("/evolution", s.handleEvolution)
		api.GET("/candles", s.handleCandles)
		api.GET("/returns", s.handleReturns)
		api.GET("/pricevolume", s.handlePriceVolume)
		api.GET("/movingavg", s.handleMovingAverages)
		api.GET("/resources", s.handleResources)
	}

	return router, nil
}

// normalizeAddress fills in the host or port when the configured
// listen address leaves one of them out. Scheme prefixes are
// tolerated and stripped.
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8080"
	}
	if strings.Contains(addr, "://") {
		if parsed, err := url.Parse(addr); err == nil && parsed.Host != "" {
			addr = parsed.Host
		}
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		if host == "" || host == "*" {
			host = "0.0.0.0"
		}
		if port == "" {
			port = "8080"
		}
		return net.JoinHostPort(host, port)
	}
	// bare host or IP
	return net.JoinHostPort(addr, "8080")
}
