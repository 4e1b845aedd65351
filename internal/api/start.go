// Package api exposes the conversion service over HTTP. One service instance
// backs all requests; the engine manager inside it already supports
// concurrent generation.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/engine"
)

// Converter is the slice of the mdforge service the API depends on.
type Converter interface {
	Convert(ctx context.Context, input mdforge.Input, outputPath string) (*engine.Result, error)
	EngineStatus() map[string]engine.HealthStatus
	EngineMetrics() map[string]engine.Metrics
	AvailableEngines() []string
	HealthyEngines() []string
}

// Server wraps an echo instance serving the conversion API.
type Server struct {
	echo *echo.Echo
	conv Converter
	log  logrus.FieldLogger
}

// NewServer creates a Server around the given converter.
func NewServer(conv Converter, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{echo: e, conv: conv, log: log}

	// Routes
	e.POST("/convert", s.convert)
	e.GET("/health", s.health)
	e.GET("/engines", s.engines)
	e.GET("/metrics", s.metrics)

	return s
}

// Start serves requests on listenAddress until the context is cancelled or
// the listener fails. Blocks.
func (s *Server) Start(ctx context.Context, listenAddress string) error {
	go func() {
		<-ctx.Done()
		if err := s.echo.Close(); err != nil {
			s.log.WithError(err).Error("failed to close HTTP server")
		}
	}()

	s.log.WithField("address", listenAddress).Info("starting HTTP server")
	if err := s.echo.Start(listenAddress); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
