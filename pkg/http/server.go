package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"CryptoSignal/pkg/http/middleware"
	applogger "CryptoSignal/pkg/logger"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       float64       `yaml:"rate_limit" default:"5"`
	RateBurst       int           `yaml:"rate_burst" default:"10"`
}

// ServerOption configures Server.
type ServerOption func(*Server)

// WithRateLimiter applies lim to every /api route.
func WithRateLimiter(lim middleware.Allower, onLimited func(route string)) ServerOption {
	return func(s *Server) {
		s.limiter = lim
		s.onLimited = onLimited
	}
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// WithHealthCheck adds a named check to /healthz.
func WithHealthCheck(name string, check HealthCheck) ServerOption {
	return func(s *Server) {
		s.checks = append(s.checks, namedCheck{name: name, check: check})
	}
}

type namedCheck struct {
	name  string
	check HealthCheck
}

const healthTimeout = 2 * time.Second

// Server wraps the Echo HTTP server.
type Server struct {
	echo      *echo.Echo
	cfg       ServerConfig
	log       *applogger.Logger
	limiter   middleware.Allower
	onLimited func(string)
	checks    []namedCheck
}

// NewServer builds the Echo instance, installs middleware and registers
// the handler's routes plus /metrics.
func NewServer(cfg ServerConfig, handler Handler, l *applogger.Logger, opts ...ServerOption) *Server {
	if l == nil {
		l = applogger.Nop()
	}
	s := &Server{cfg: cfg, log: l}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.Recover(l))
	e.Use(middleware.RequestLogging(l, cfg.SlowRequest))
	e.Use(middleware.Metrics())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
	if s.limiter != nil {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			limited := middleware.RateLimit(s.limiter, s.onLimited)(next)
			return func(c echo.Context) error {
				if strings.HasPrefix(c.Path(), "/api/") {
					return limited(c)
				}
				return next(c)
			}
		})
	}

	if handler != nil {
		handler.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", s.health)

	s.echo = e
	return s
}

// health runs every check. Any failure turns the response into a 503.
func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	out := map[string]string{"status": "ok"}
	for _, nc := range s.checks {
		if err := nc.check(ctx); err != nil {
			s.log.Warn("health check failed", applogger.String("check", nc.name), applogger.Error(err))
			out[nc.name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		out[nc.name] = "ok"
	}
	if status != http.StatusOK {
		out["status"] = "degraded"
	}
	return DataResponse(c, status, out)
}

// Start listens in the background. Listener failures are sent on the
// returned channel.
func (s *Server) Start() <-chan error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", applogger.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }
