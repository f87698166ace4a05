package repl

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandrolain/gojexp"
	"github.com/sandrolain/gojexp/pkg/log"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "sum", 3, "sum", 0, 3},
		{"after_plus", "a + fi", 6, "fi", 4, 6},
		{"after_paren", "map(fi", 6, "fi", 4, 6},
		{"after_comma", "max(a, mi", 9, "mi", 7, 9},
		{"variable", "$x", 2, "x", 1, 2},
		{"block", "@{_ > le", 8, "le", 6, 8},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "filter", 3, "filter", 0, 6},
		{"cursor_past_end", "abs", 10, "abs", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load of a missing file: %v", err)
	}
	for _, line := range []string{"1 + 1", "1 + 1", "  ", "x = 2"} {
		if err := h.Add(line); err != nil {
			t.Fatal(err)
		}
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	again := NewHistory(path)
	if err := again.Load(); err != nil {
		t.Fatal(err)
	}
	if got, ok := again.At(1); !ok || got != "x = 2" {
		t.Errorf("At(1) = %q, %v", got, ok)
	}
	if _, ok := again.At(2); ok {
		t.Error("At(2) found an entry")
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	return newModel(context.Background(), Config{
		Context: gojexp.NewContext(),
		Logger:  log.Discard(),
	}, NewHistory(""))
}

func TestRun(t *testing.T) {
	m := newTestModel(t)

	if out, quit := m.run("x = 3"); quit || !strings.Contains(out, "3") {
		t.Errorf("run(x = 3) = %q, %v", out, quit)
	}
	if out, _ := m.run("x * 5"); !strings.Contains(out, "15") {
		t.Errorf("assignment did not persist: %q", out)
	}
	if out, _ := m.run(":vars"); !strings.Contains(out, "x = ") {
		t.Errorf(":vars = %q", out)
	}
	if out, _ := m.run("12 +"); !strings.Contains(out, "error:") {
		t.Errorf("parse failure printed %q", out)
	}
	if out, _ := m.run(":nope"); !strings.Contains(out, "unknown command") {
		t.Errorf(":nope = %q", out)
	}
	if _, quit := m.run(":quit"); !quit {
		t.Error(":quit did not end the session")
	}
}

func typeText(m model, s string) model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}
	return m
}

func TestComplete(t *testing.T) {
	m := typeText(newTestModel(t), "1 + fltr")
	if len(m.matches) == 0 || m.matches[0].Str != "filter" {
		t.Fatalf("matches for fltr: %v", m.matches)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	if got := m.input.Value(); got != "1 + filter" {
		t.Errorf("after Tab: %q", got)
	}
}

func TestHistoryKeys(t *testing.T) {
	m := newTestModel(t)
	for _, line := range []string{"1", "2"} {
		m = typeText(m, line)
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = next.(model)
	}
	if m.input.Value() != "" {
		t.Fatalf("input not cleared: %q", m.input.Value())
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	if got := m.input.Value(); got != "2" {
		t.Errorf("Up recalled %q, want 2", got)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(model)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	if got := m.input.Value(); got != "2" {
		t.Errorf("Down recalled %q, want 2", got)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	if got := m.input.Value(); got != "" {
		t.Errorf("Down past the end gave %q", got)
	}
}

func TestQuitKeys(t *testing.T) {
	m := typeText(newTestModel(t), "abc")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(model)
	if m.quitting || m.input.Value() != "" {
		t.Fatalf("Ctrl+C on a line: quitting=%v input=%q", m.quitting, m.input.Value())
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	m = next.(model)
	if !m.quitting || cmd == nil {
		t.Error("Ctrl+D on an empty line did not quit")
	}
	if m.View() != "" {
		t.Error("View after quitting is not empty")
	}
}
