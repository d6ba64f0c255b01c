package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/config"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/logging"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/provider"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server that answers /ask-ai with the configured LLM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default $PORT or "+strconv.Itoa(config.DefaultPort)+")")
	return cmd
}

// buildProvider creates a Provider instance based on configuration.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	rp, err := cfg.ResolveProvider()
	if err != nil {
		return nil, err
	}
	switch rp.Name {
	case "anthropic":
		return provider.NewAnthropicProvider(rp.APIKey, rp.BaseURL, rp.Model), nil
	default:
		// All other providers use OpenAI-compatible API
		return provider.NewOpenAIProvider(rp.APIKey, rp.BaseURL, rp.Model), nil
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, logs, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "logger")
	}
	defer logs.Close()

	p, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	srv := server.New(server.ProviderGenerator{
		Provider:     p,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
	}, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	log.Info().
		Str("provider", p.Name()).
		Str("model", p.DefaultModel()).
		Int("port", cfg.Server.Port).
		Msg("starting relay")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down relay")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
