package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

// PlainIO implements IO with plain line output. It is used when TUI mode is
// off or stdout is not a terminal.
type PlainIO struct {
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

var _ IO = (*PlainIO)(nil)

// NewPlainIO reads lines from in and writes to out; errors go to errOut.
func NewPlainIO(in io.Reader, out, errOut io.Writer) *PlainIO {
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 1024*1024), 1024*1024)
	return &PlainIO{scanner: s, out: out, errOut: errOut}
}

func (p *PlainIO) ReadInput() (string, error) {
	fmt.Fprint(p.out, "\n> ")
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}

// ClearPrompt is a no-op: the terminal line is gone once submitted.
func (p *PlainIO) ClearPrompt() {}

func (p *PlainIO) Reset() {
	fmt.Fprintln(p.out, strings.Repeat("-", 30))
}

func (p *PlainIO) UserMessage(_ string) {
	// The user already sees what they typed.
}

func (p *PlainIO) AssistantMessage(text string) {
	fmt.Fprintf(p.out, "\n%s\n", strings.TrimRight(text, "\n"))
}

func (p *PlainIO) History(msgs []chat.Message) {
	for _, m := range msgs {
		if m.Role == chat.RoleUser {
			fmt.Fprintf(p.out, "\n> %s\n", m.Content)
			continue
		}
		p.AssistantMessage(m.Content)
	}
}

func (p *PlainIO) ThinkingStart() {
	fmt.Fprintln(p.out, ThinkingText)
}

func (p *PlainIO) ThinkingDone() {}

func (p *PlainIO) SystemMessage(text string) {
	fmt.Fprintln(p.out, text)
}

func (p *PlainIO) Error(msg string) {
	fmt.Fprintf(p.errOut, "error: %s\n", msg)
}

func (p *PlainIO) SetStatus(_ string) {}
