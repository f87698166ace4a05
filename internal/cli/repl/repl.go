// Package repl implements the interactive gojexp session.
//
// Every line is evaluated against one Context, so assignments persist
// from line to line. Lines starting with ':' are session commands.
package repl

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandrolain/gojexp"
	"github.com/sandrolain/gojexp/pkg/functions"
	"github.com/sandrolain/gojexp/pkg/log"
)

const prompt = "» "

const help = `
Type an expression to evaluate it. Commands:

  :vars    List variables
  :help    Print this help
  :quit    Exit

Tab completes function and variable names, Up/Down walk the history,
Ctrl+C clears the line and exits on an empty one.
`

// Styles.
var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
)

// Config holds what a session needs.
type Config struct {
	Context     *gojexp.Context
	Options     []gojexp.Option
	Functions   *functions.Registry
	HistoryPath string
	Logger      log.Logger
}

// Run runs an interactive session until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	history := NewHistory(cfg.HistoryPath)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}
	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.HistoryPath),
		slog.Int("entries", history.Len()))

	_, err := tea.NewProgram(newModel(ctx, cfg, history), tea.WithContext(ctx)).Run()
	return err
}

type model struct {
	ctxFunc    func() context.Context
	cfg        Config
	input      textinput.Model
	history    *History
	historyIdx int
	matches    fuzzy.Matches
	suggIdx    int
	quitting   bool
}

func newModel(ctx context.Context, cfg Config, history *History) model {
	if cfg.Context == nil {
		cfg.Context = gojexp.NewContext()
	}
	if cfg.Functions == nil {
		cfg.Functions = functions.Default()
	}
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = 78

	return model{
		ctxFunc:    func() context.Context { return ctx },
		cfg:        cfg,
		input:      ti,
		history:    history,
		historyIdx: history.Len(),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - len(prompt) - 2
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(fmt.Sprintf("%d/%d", m.historyIdx+1, m.history.Len())))
	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type an expression or :help"))
	case len(m.matches) > 0:
		b.WriteString(renderMatches(m.matches, m.suggIdx))
	}
	b.WriteString("\n")
	return b.String()
}

func renderMatches(matches fuzzy.Matches, selected int) string {
	const shown = 8
	parts := make([]string, 0, shown)
	for i, mt := range matches {
		if i == shown {
			parts = append(parts, hintStyle.Render("…"))
			break
		}
		if i == selected {
			parts = append(parts, selectedStyle.Render(mt.Str))
		} else {
			parts = append(parts, hintStyle.Render(mt.Str))
		}
	}
	return strings.Join(parts, " ")
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		m.input.SetValue("")
		m.historyIdx = m.history.Len()
		m.matches = nil
		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyEnter:
		return m.execute()

	case tea.KeyTab:
		return m.complete(), nil

	case tea.KeyUp:
		return m.recall(-1), nil

	case tea.KeyDown:
		return m.recall(1), nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.matches, m.suggIdx = nil, 0
	if word, _, _ := wordBounds(m.input.Value(), m.input.Position()); word != "" {
		m.matches = fuzzy.Find(word, m.candidates())
	}
	return m, cmd
}

// candidates lists function names followed by variable names.
func (m model) candidates() []string {
	return slices.Concat(m.cfg.Functions.Names(), m.cfg.Context.Names())
}

// complete replaces the word at the cursor with the selected match and
// moves the selection so that the next Tab cycles.
func (m model) complete() model {
	line := m.input.Value()
	word, start, end := wordBounds(line, m.input.Position())
	if word == "" {
		return m
	}
	if len(m.matches) == 0 {
		m.matches, m.suggIdx = fuzzy.Find(word, m.candidates()), 0
		if len(m.matches) == 0 {
			return m
		}
	}
	pick := m.matches[m.suggIdx%len(m.matches)].Str
	m.input.SetValue(line[:start] + pick + line[end:])
	m.input.SetCursor(start + len(pick))
	m.suggIdx = (m.suggIdx + 1) % len(m.matches)
	return m
}

func (m model) recall(step int) model {
	i := m.historyIdx + step
	if i < 0 || i > m.history.Len() {
		return m
	}
	m.historyIdx = i
	line, ok := m.history.At(i)
	if !ok {
		line = ""
	}
	m.input.SetValue(line)
	m.input.CursorEnd()
	m.matches = nil
	return m
}

func (m model) execute() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.matches = nil
	if line == "" {
		return m, nil
	}
	if err := m.history.Add(line); err != nil {
		m.cfg.Logger.WarnContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}
	m.historyIdx = m.history.Len()

	echo := promptStyle.Render(prompt) + inputStyle.Render(line)
	out, quit := m.run(line)
	if quit {
		m.quitting = true
		return m, tea.Sequence(tea.Println(echo), tea.Quit)
	}
	return m, tea.Println(echo + "\n" + out)
}

// run evaluates line or executes the session command it names, returning
// the styled output and whether the session should end.
func (m model) run(line string) (string, bool) {
	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		switch strings.TrimSpace(cmd) {
		case "q", "quit", "exit":
			return "", true
		case "help":
			return hintStyle.Render(help), false
		case "vars":
			return m.vars(), false
		}
		return errorStyle.Render("unknown command :" + cmd), false
	}

	ctx := m.ctxFunc()
	r, err := gojexp.EvalWithContext(ctx, line, m.cfg.Context, m.cfg.Options...)
	if err != nil {
		m.cfg.Logger.DebugContext(ctx, "repl eval failed", slog.String("line", line), slog.Any("error", err))
		return errorStyle.Render("error: " + err.Error()), false
	}
	return resultStyle.Render(r.String()), false
}

func (m model) vars() string {
	names := m.cfg.Context.Names()
	if len(names) == 0 {
		return hintStyle.Render("no variables")
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = n + " = " + resultStyle.Render(m.cfg.Context.GetVariable(n).String())
	}
	return strings.Join(lines, "\n")
}
