package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInput(t *testing.T) {
	in := NewQueryInput(nil)

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
	assert.True(t, in.Focused())
	assert.Empty(t, in.Value())
	assert.NotNil(t, in.Init())
}

func TestQueryInput_Typing(t *testing.T) {
	in := NewQueryInput(nil)

	for _, r := range "what is rag" {
		in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "what is rag", in.Value())
}

func TestQueryInput_SetValueAndReset(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetValue("hello")
	assert.Equal(t, "hello", in.Value())

	in.Reset()
	assert.Empty(t, in.Value())
}

func TestQueryInput_FocusBlur(t *testing.T) {
	in := NewQueryInput(nil)

	in.Blur()
	assert.False(t, in.Focused())

	in.Focus()
	assert.True(t, in.Focused())
}

func TestQueryInput_SetWidth(t *testing.T) {
	in := NewQueryInput(nil)

	in.SetWidth(100)
	assert.Equal(t, 100, in.Width())
	assert.Greater(t, in.textinput.Width, 20)

	in.SetWidth(5)
	assert.Equal(t, 20, in.textinput.Width)
}

func TestQueryInput_View(t *testing.T) {
	in := NewQueryInput(nil)
	assert.Contains(t, in.View(), "Query:")
}
