// Package assistant is the interactive chat loop: it reads lines from a
// tui.IO, runs slash commands and hands prompts to the chat manager.
package assistant

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/tui"
)

const helpText = `Commands:
  /new               start a new chat
  /sessions          list saved chats (* = current)
  /open <n|id>       switch to chat n from /sessions, or by id
  /delete <n|id>     delete a chat
  /history           show the current chat again
  /help              show this help
  /quit              exit
Anything else is sent to the AI.`

// Assistant drives one chat manager from one front-end.
type Assistant struct {
	manager *chat.Manager
	io      tui.IO
	log     zerolog.Logger
}

func New(m *chat.Manager, io tui.IO, log zerolog.Logger) *Assistant {
	return &Assistant{manager: m, io: io, log: log}
}

// Run shows the restored conversation, then reads and handles input until
// the user quits, input ends, or ctx is cancelled.
func (a *Assistant) Run(ctx context.Context) error {
	a.showCurrent()
	a.io.SystemMessage("Type /help for commands.")

	for {
		line, err := a.io.ReadInput()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read input")
		}
		if ctx.Err() != nil {
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "/") {
			a.io.ClearPrompt()
			if quit := a.command(trimmed); quit {
				return nil
			}
			continue
		}
		a.ask(ctx, line)
	}
}

// ask runs one turn and shows its outcome. The manager clears the prompt
// once the turn is accepted.
func (a *Assistant) ask(ctx context.Context, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		return
	}

	a.io.UserMessage(prompt)
	a.io.ThinkingStart()
	a.manager.Submit(ctx, prompt)
	a.io.ThinkingDone()

	if sess, ok := a.manager.Active(); ok {
		if last, ok := sess.LastMessage(); ok && last.Role == chat.RoleAssistant {
			a.io.AssistantMessage(last.Content)
		}
	}
	a.updateStatus()
}

// command runs a slash command and reports whether the loop should stop.
func (a *Assistant) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return true

	case "/help":
		a.io.SystemMessage(helpText)

	case "/new":
		a.manager.NewChat()
		a.io.Reset()
		a.io.SystemMessage("New chat. Ask me anything!")
		a.updateStatus()

	case "/sessions":
		a.io.SystemMessage(tui.FormatSessions(a.manager.Sessions(), a.manager.ActiveID()))

	case "/open":
		id, err := a.resolve(arg)
		if err != nil {
			a.io.Error(err.Error())
			return false
		}
		a.manager.SelectChat(id)
		a.showCurrent()

	case "/delete":
		id, err := a.resolve(arg)
		if err != nil {
			a.io.Error(err.Error())
			return false
		}
		wasActive := id == a.manager.ActiveID()
		title := ""
		if s, ok := a.manager.Session(id); ok {
			title = s.Title
		}
		a.manager.DeleteSession(id)
		a.log.Debug().Str("session", id).Msg("session deleted")
		if wasActive {
			a.io.Reset()
		}
		a.io.SystemMessage("Deleted: " + title)
		a.updateStatus()

	case "/history":
		a.showCurrent()

	default:
		a.io.Error("unknown command " + name + " (try /help)")
	}
	return false
}

// resolve maps a /sessions number, a full id, or a unique id prefix or
// tail to a session id.
func (a *Assistant) resolve(arg string) (string, error) {
	return Resolve(a.manager.Sessions(), arg)
}

// Resolve finds the session arg refers to: its 1-based position in the
// list, its exact id, or a unique prefix or tail of its id.
func Resolve(sessions []chat.Session, arg string) (string, error) {
	if arg == "" {
		return "", errors.New("which chat? give a number from /sessions or an id")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(sessions) {
			return "", errors.Errorf("no chat number %d (have %d)", n, len(sessions))
		}
		return sessions[n-1].ID, nil
	}

	var matches []string
	for _, s := range sessions {
		if s.ID == arg {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, arg) || strings.HasSuffix(s.ID, arg) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.Errorf("no chat matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return "", errors.Errorf("%q matches %d chats; use more characters", arg, len(matches))
	}
}

// showCurrent redraws the active conversation from the store.
func (a *Assistant) showCurrent() {
	a.io.Reset()
	if msgs := a.manager.CurrentMessages(); len(msgs) > 0 {
		a.io.History(msgs)
	}
	a.updateStatus()
}

func (a *Assistant) updateStatus() {
	title := "new chat"
	if s, ok := a.manager.Active(); ok {
		title = s.Title
	}
	a.io.SetStatus(title + " | " + strconv.Itoa(len(a.manager.Sessions())) + " chats")
}
