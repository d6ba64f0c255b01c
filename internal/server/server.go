// Package server is the askai relay: a small HTTP service that forwards a
// prompt to the configured LLM provider and returns its answer.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/provider"
)

// Generator produces one answer for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderGenerator adapts a provider to Generator, sending every prompt as
// a fresh single-turn conversation.
type ProviderGenerator struct {
	Provider     provider.Provider
	SystemPrompt string
	MaxTokens    int
}

func (g ProviderGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	answer, _, err := provider.Complete(ctx, g.Provider, provider.Prompt(prompt, g.SystemPrompt, g.MaxTokens))
	return answer, err
}

type Options struct {
	// AllowedOrigins lists the browser origins permitted by CORS.
	AllowedOrigins []string
	Logger         zerolog.Logger
}

type Server struct {
	echo      *echo.Echo
	generator Generator
	log       zerolog.Logger
	metrics   *metrics
}

func New(gen Generator, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		generator: gen,
		log:       opts.Logger,
		metrics:   newMetrics(),
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	// Outside Recover, so a recovered panic is counted as a 500.
	e.Use(s.metrics.middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/ask-ai", s.handleAskAI)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
}

// ServeHTTP lets tests and embedders drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr and blocks until the server stops. A clean
// Shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("relay listening")
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
