package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

func newAskCmd() *cobra.Command {
	var newChat bool

	cmd := &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Send a single prompt and print the answer",
		Example: `  askai ask "what is a goroutine?"
  askai ask --new explain channels in one paragraph`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), newChat)
		},
	}

	cmd.Flags().BoolVarP(&newChat, "new", "n", false, "start a new chat instead of continuing the current one")

	return cmd
}

// runAsk runs one turn in the current (or a new) chat and prints the reply.
func runAsk(cmd *cobra.Command, prompt string, newChat bool) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt is empty")
	}
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	s, err := openSession(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if newChat {
		s.manager.NewChat()
	}
	s.manager.Submit(ctx, prompt)

	sess, ok := s.manager.Active()
	if !ok {
		return errors.New("no active chat after submit")
	}
	last, ok := sess.LastMessage()
	if !ok || last.Role != chat.RoleAssistant {
		return errors.New("no reply recorded")
	}
	fmt.Fprintln(cmd.OutOrStdout(), last.Content)
	if chat.IsErrorEntry(last.Content) {
		return errors.Errorf("ask failed (chat %s)", sess.ID)
	}
	return nil
}
