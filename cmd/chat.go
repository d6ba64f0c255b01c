package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/assistant"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/tui"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd)
		},
	}
}

// runChat starts the interactive chat (REPL) mode.
func runChat(cmd *cobra.Command) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useTUI {
		return tui.RunTUI(ctx, func(ctx context.Context, ui tui.IO) error {
			// The TUI keeps the typed prompt until the manager accepts the turn.
			s, err := openSession(cfg, cmd.ErrOrStderr(), true, chat.WithPromptBuffer(ui))
			if err != nil {
				return err
			}
			defer s.Close()
			return assistant.New(s.manager, ui, s.log).Run(ctx)
		})
	}

	// Plain IO mode
	ui := tui.NewPlainIO(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	s, err := openSession(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close()
	return assistant.New(s.manager, ui, s.log).Run(ctx)
}
