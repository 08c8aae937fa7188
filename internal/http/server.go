// Package http provides the web front end for ghostwriter: a JSON API over
// the draft lifecycle plus an embedded review form driving the same API.
package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghostwriter/internal/draft"
)

//go:embed static
var staticFS embed.FS

// Lifecycle is the slice of the draft controller the front end drives.
type Lifecycle interface {
	RequestDraft(ctx context.Context, req draft.Request) (*draft.Draft, error)
	Get(userID string) (*draft.Draft, bool)
	EditContent(ctx context.Context, userID string, subject, body *string) (*draft.Draft, error)
	ConfirmSend(ctx context.Context, userID string) (*draft.Draft, error)
	Discard(ctx context.Context, userID string) (*draft.Draft, error)
}

// Resolver powers the contact lookup preview on the form.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server provides the HTTP endpoints.
type Server struct {
	echo      *echo.Echo
	lifecycle Lifecycle
	resolver  Resolver
	logger    *zap.Logger
	config    *Config
}

// NewServer creates a new HTTP server.
func NewServer(lifecycle Lifecycle, resolver Resolver, logger *zap.Logger, cfg *Config) (*Server, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle cannot be nil")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8080}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		lifecycle: lifecycle,
		resolver:  resolver,
		logger:    logger,
		config:    cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	static, _ := fs.Sub(staticFS, "static")
	s.echo.FileFS("/", "index.html", static)

	v1 := s.echo.Group("/api/v1")
	v1.GET("/contacts/:name", s.handleResolveContact)
	v1.POST("/drafts", s.handleRequestDraft)
	v1.GET("/drafts/:user_id", s.handleGetDraft)
	v1.PATCH("/drafts/:user_id", s.handleEditDraft)
	v1.POST("/drafts/:user_id/send", s.handleSendDraft)
	v1.DELETE("/drafts/:user_id", s.handleDiscardDraft)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
