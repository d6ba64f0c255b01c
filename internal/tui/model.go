package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/chat"
)

// ---------- messages sent from the chat goroutine via program.Send() ----------

type readInputMsg struct{}

type inputResult struct {
	text string
	err  error
}

type clearPromptMsg struct{}
type resetMsg struct{}
type historyMsg struct{ msgs []chat.Message }
type userMsg struct{ text string }
type assistantMsg struct{ text string }
type thinkingStartMsg struct{}
type thinkingDoneMsg struct{}
type systemMsg struct{ text string }
type errorMsg struct{ text string }
type statusMsg struct{ text string }
type loopDoneMsg struct{ err error }

// ---------- styles ----------

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	// Failed turns are stored as assistant entries; tint them.
	failedReplyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // gray spinner
)

// ---------- Model ----------

const statusBarHeight = 1
const inputHeight = 1

// Model is the bubbletea model managing the full TUI state.
type Model struct {
	viewport  viewport.Model
	textinput textinput.Model
	spinner   spinner.Model
	width     int
	height    int

	lines     []string // rendered conversation, one entry per block
	inputMode bool     // text input is active (waiting for user)
	thinking  bool     // waiting for the assistant's reply

	inputCh chan inputResult // send user input back to ReadInput()

	quitting bool
	status   string
}

// NewModel creates the initial bubbletea model.
func NewModel(inputCh chan inputResult) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = Placeholder
	ti.CharLimit = 8192

	vp := viewport.New(80, 24)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		viewport:  vp,
		textinput: ti,
		spinner:   sp,
		inputCh:   inputCh,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - statusBarHeight - inputHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
		m.textinput.Width = m.width - 4 // account for prompt

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			if m.inputMode {
				m.inputCh <- inputResult{err: fmt.Errorf("interrupted")}
				m.inputMode = false
				m.textinput.Blur()
			}
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.inputMode {
				// The text stays until the turn is accepted (clearPromptMsg).
				m.inputCh <- inputResult{text: m.textinput.Value()}
				m.inputMode = false
				m.textinput.Blur()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.inputMode {
			var cmd tea.Cmd
			m.textinput, cmd = m.textinput.Update(msg)
			cmds = append(cmds, cmd)
		}

	// ---------- custom messages from the chat goroutine ----------

	case readInputMsg:
		m.inputMode = true
		m.textinput.Focus()
		cmds = append(cmds, textinput.Blink)

	case clearPromptMsg:
		m.textinput.SetValue("")

	case resetMsg:
		m.lines = nil

	case historyMsg:
		for _, cm := range msg.msgs {
			if cm.Role == chat.RoleUser {
				m.appendUser(cm.Content)
			} else {
				m.appendAssistant(cm.Content)
			}
		}

	case userMsg:
		m.appendUser(msg.text)

	case assistantMsg:
		m.appendAssistant(msg.text)

	case thinkingStartMsg:
		m.thinking = true

	case thinkingDoneMsg:
		m.thinking = false

	case systemMsg:
		m.appendLine(systemStyle.Render(msg.text))

	case errorMsg:
		m.appendLine(errorStyle.Render("Error: " + msg.text))

	case statusMsg:
		m.status = msg.text

	case loopDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoBottom()

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	bar := statusBarStyle.Width(m.width).Render(" " + m.status)

	var input string
	if m.inputMode {
		input = m.textinput.View()
	}

	return m.viewport.View() + "\n" + bar + "\n" + input
}

// renderContent returns the viewport content plus the spinner while a
// reply is pending.
func (m *Model) renderContent() string {
	base := strings.Join(m.lines, "")
	if m.thinking {
		return base + "\n" + m.spinner.View() + " " + ThinkingText
	}
	return base
}

// ---------- markdown rendering ----------

// renderMarkdown renders an assistant reply with glamour, falling back to
// the raw text.
func (m *Model) renderMarkdown(text string) string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

// ---------- helpers ----------

func (m *Model) appendUser(text string) {
	m.appendLine(userStyle.Render("You: " + text))
}

func (m *Model) appendAssistant(text string) {
	if chat.IsErrorEntry(text) {
		m.appendLine(failedReplyStyle.Render(text))
		return
	}
	m.appendLine(m.renderMarkdown(text))
}

func (m *Model) appendLine(text string) {
	m.lines = append(m.lines, text+"\n")
}
