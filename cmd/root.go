package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/askai"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/config"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/logging"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

var (
	cfgFile      string
	modelFlag    string
	providerFlag string
	serverFlag   string
	storageFlag  string
	logLevelFlag string
	useTUI       bool

	// Package-level version info, set by Execute().
	appVersion string
	appCommit  string
	appDate    string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "askai",
		Short: "Chat with an AI from the terminal",
		Long: "askai keeps a local history of chat sessions and sends each prompt to an\n" +
			"askai relay server, which forwards it to the configured LLM provider.",
		// Running askai with no subcommand starts chat mode.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Default TUI on when stdout is a terminal and --tui was not explicitly set.
			if !cmd.Root().PersistentFlags().Changed("tui") && term.IsTerminal(int(os.Stdout.Fd())) {
				useTUI = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/askai/config.yaml)")
	pf.StringVarP(&modelFlag, "model", "m", "", "override model (serve)")
	pf.StringVarP(&providerFlag, "provider", "p", "", "override provider (serve)")
	pf.StringVar(&serverFlag, "server", "", "relay server URL (default "+askai.DefaultServerURL+")")
	pf.StringVar(&storageFlag, "storage", "", "history storage driver: file, sqlite or memory")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&useTUI, "tui", false, "use bubbletea TUI mode (default: auto-detect terminal)")

	// Subcommands
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newVersionCmd(appVersion, appCommit, appDate))

	return rootCmd
}

// initConfig loads .env and the config file, applying CLI flag overrides.
func initConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	// CLI flags override config values
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if serverFlag != "" {
		cfg.Client.ServerURL = serverFlag
	}
	if storageFlag != "" {
		cfg.Storage.Driver = storageFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}

	return cfg, nil
}

// newLogger builds the command logger. In TUI mode logs go to a file so
// they never draw over the alt-screen.
func newLogger(cfg *config.Config, stderr io.Writer, tuiMode bool) (zerolog.Logger, io.Closer, error) {
	lc := cfg.Log
	if tuiMode && lc.File == "" {
		f, err := logging.DefaultFile()
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		lc.File = f
	}
	return logging.New(lc, stderr)
}

// session is everything a chat-facing command needs: the manager plus the
// handles to release when the command ends.
type session struct {
	manager *chat.Manager
	kv      storage.KV
	log     zerolog.Logger
	logs    io.Closer
}

func (s *session) Close() {
	if err := s.kv.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close history store")
	}
	_ = s.logs.Close()
}

// openSession opens the configured history store and a manager that asks
// the configured relay server.
func openSession(cfg *config.Config, stderr io.Writer, tuiMode bool, opts ...chat.Option) (*session, error) {
	log, logs, err := newLogger(cfg, stderr, tuiMode)
	if err != nil {
		return nil, errors.Wrap(err, "logger")
	}

	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		_ = logs.Close()
		return nil, errors.Wrap(err, "open history store")
	}

	client := askai.NewClient(cfg.Client.ServerURL, time.Duration(cfg.Client.RequestTimeoutSec)*time.Second)
	log.Debug().
		Str("server", client.BaseURL()).
		Str("storage", cfg.Storage.Driver).
		Msg("session opened")

	opts = append([]chat.Option{chat.WithLogger(log)}, opts...)
	return &session{
		manager: chat.NewManager(chat.NewKVPersister(kv), client, opts...),
		kv:      kv,
		log:     log,
		logs:    logs,
	}, nil
}
