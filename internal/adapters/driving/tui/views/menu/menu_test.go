package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil)

	require.NotNil(t, v)
	assert.Equal(t, 0, v.Selected())
	assert.Len(t, v.Items(), 4)
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil)

	v, _ = v.Update(key("up"))
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(key("j"))
	v, _ = v.Update(key("down"))
	assert.Equal(t, 2, v.Selected())

	for range 5 {
		v, _ = v.Update(key("j"))
	}
	assert.Equal(t, 3, v.Selected())

	v, _ = v.Update(key("k"))
	assert.Equal(t, 2, v.Selected())
}

func TestView_EnterSwitchesView(t *testing.T) {
	v := NewView(nil)
	v, _ = v.Update(key("down"))

	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)

	msg := cmd()
	changed, ok := msg.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewCollection, changed.View)
}

func TestView_QuitItem(t *testing.T) {
	v := NewView(nil)
	for range 3 {
		v, _ = v.Update(key("j"))
	}

	_, cmd := v.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(100, 30)

	out := v.View()
	assert.Contains(t, out, "ragcore")
	assert.Contains(t, out, "Retrieve")
	assert.Contains(t, out, "Collection")
	assert.Contains(t, out, "[q] Quit")
}
