package content

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
)

type mockActions struct {
	copied string
}

func (m *mockActions) CopyToClipboard(_ context.Context, text string) error {
	m.copied = text
	return nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func longText(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line"
	}
	return strings.Join(lines, "\n")
}

func TestView_SetContent(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 20)

	v.SetContent(messages.ContentRequested{Title: "Assembled context", Content: "[Document: a.txt, Chunk 0]\nalpha"})

	assert.Equal(t, "Assembled context", v.Title())
	out := v.View()
	assert.Contains(t, out, "Assembled context")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "alpha")
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil, nil)
	assert.Contains(t, v.View(), "(No content)")
}

func TestView_Scrolling(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(80, 16)
	v.SetContent(messages.ContentRequested{Content: longText(50)})

	v, _ = v.Update(keyMsg("down"))
	v, _ = v.Update(keyMsg("j"))
	assert.Equal(t, 2, v.ScrollOffset())

	v, _ = v.Update(keyMsg("G"))
	assert.Equal(t, 40, v.ScrollOffset())

	v, _ = v.Update(keyMsg("j"))
	assert.Equal(t, 40, v.ScrollOffset())

	v, _ = v.Update(keyMsg("g"))
	assert.Equal(t, 0, v.ScrollOffset())
	assert.Contains(t, v.View(), "Line 1-10 of 50")
}

func TestView_WrapsLongLines(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(24, 40)
	v.SetContent(messages.ContentRequested{Content: strings.Repeat("é", 45)})

	assert.Len(t, v.lines, 3)
	assert.Equal(t, 20, len([]rune(v.lines[0])))
}

func TestView_Copy(t *testing.T) {
	actions := &mockActions{}
	v := NewView(nil, actions)
	v.SetContent(messages.ContentRequested{Content: "alpha"})

	_, cmd := v.Update(keyMsg("c"))
	require.NotNil(t, cmd)
	msg := cmd()

	assert.Equal(t, "alpha", actions.copied)
	v, _ = v.Update(msg)
	assert.Contains(t, v.View(), "copied to clipboard")
}

func TestView_EscReturnsToOrigin(t *testing.T) {
	v := NewView(nil, nil)
	v.SetContent(messages.ContentRequested{Content: "x", Back: messages.ViewCollection})

	_, cmd := v.Update(keyMsg("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCollection}, cmd())
}
