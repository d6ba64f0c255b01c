package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/assistant"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/tui"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"history"},
		Short:   "List, show or delete saved chats",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved chats, newest first (* = current)",
			Args:  cobra.NoArgs,
			RunE: withSession(func(cmd *cobra.Command, m *chat.Manager, _ []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), tui.FormatSessions(m.Sessions(), m.ActiveID()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <n|id>",
			Short: "Print a saved chat",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(func(cmd *cobra.Command, m *chat.Manager, args []string) error {
				id, err := assistant.Resolve(m.Sessions(), args[0])
				if err != nil {
					return err
				}
				sess, _ := m.Session(id)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", sess.Title, sess.ID)
				for _, msg := range sess.Messages {
					if msg.Role == chat.RoleUser {
						fmt.Fprintf(out, "\n> %s\n", msg.Content)
					} else {
						fmt.Fprintf(out, "\n%s\n", msg.Content)
					}
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <n|id>",
			Short: "Delete a saved chat",
			Args:  cobra.ExactArgs(1),
			RunE: withSession(func(cmd *cobra.Command, m *chat.Manager, args []string) error {
				id, err := assistant.Resolve(m.Sessions(), args[0])
				if err != nil {
					return err
				}
				sess, _ := m.Session(id)
				m.DeleteSession(id)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", sess.Title)
				return nil
			}),
		},
	)
	return cmd
}

// withSession opens the history for the duration of one maintenance command.
func withSession(fn func(cmd *cobra.Command, m *chat.Manager, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := initConfig()
		if err != nil {
			return err
		}
		s, err := openSession(cfg, cmd.ErrOrStderr(), false)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s.manager, args)
	}
}
