package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

func sampleResults() []domain.QueryResult {
	return []domain.QueryResult{
		{Text: "alpha chunk", Metadata: domain.ChunkMetadata{Source: "a.txt", ChunkIndex: 0}, Distance: 0.1},
		{Text: "beta chunk", Metadata: domain.ChunkMetadata{Source: "b.pdf", ChunkIndex: 3}, Distance: 0.2},
		{Text: "gamma chunk", Metadata: domain.ChunkMetadata{Source: "c.docx", ChunkIndex: 1}, Distance: 0.4},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.SelectedResult())
	assert.Nil(t, list.Init())
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected())

	list.MoveDown()
	list.MoveDown()
	list.MoveDown()
	assert.Equal(t, 2, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, list.Selected())
	assert.Equal(t, "c.docx", list.SelectedResult().Metadata.Source)
}

func TestResultList_SetResultsResetsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults()[:1])

	assert.Equal(t, 0, list.Selected())
	assert.Equal(t, 1, list.Count())
}

func TestResultList_SetSelectedOutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(10)
	assert.Equal(t, 0, list.Selected())
	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	assert.Contains(t, list.View(), "No matching chunks")

	list.SetResults(sampleResults())
	list.SetDimensions(100, 40)
	view := list.View()

	assert.Contains(t, view, "Chunks (3)")
	assert.Contains(t, view, "a.txt #0")
	assert.Contains(t, view, "0.900")
	assert.Contains(t, view, "beta chunk")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}
