package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Filename: "biology.pdf", DocumentID: "d1", ChunkIndex: 0, Text: "Mitosis is cell division.", Score: 0.95},
		{Filename: "biology.pdf", DocumentID: "d1", ChunkIndex: 3, Text: "Meiosis halves chromosomes.", Score: 0.85},
		{Filename: "", DocumentID: "d2", ChunkIndex: 1, Text: "Untitled chunk", Score: 0.75},
	}
}

func TestNewResultList(t *testing.T) {
	l := NewResultList(nil)

	require.NotNil(t, l)
	assert.NotNil(t, l.styles)
	assert.Zero(t, l.Count())
	assert.Nil(t, l.Init())
	assert.Nil(t, l.SelectedResult())
	assert.Contains(t, l.View(), "No results")
}

func TestResultList_Navigation(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l.MoveUp()
	assert.Equal(t, 0, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, l.Selected())

	l.MoveDown()
	assert.Equal(t, 2, l.Selected())

	l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, l.Selected())
	assert.Equal(t, 3, l.SelectedResult().ChunkIndex)
}

func TestResultList_SetSelected(t *testing.T) {
	l := NewResultList(nil)
	l.SetResults(sampleResults())

	l.SetSelected(2)
	assert.Equal(t, 2, l.Selected())

	l.SetSelected(10)
	l.SetSelected(-1)
	assert.Equal(t, 2, l.Selected())

	l.SetResults(sampleResults()[:1])
	assert.Equal(t, 0, l.Selected())
}

func TestResultList_View(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(100, 40)
	l.SetResults(sampleResults())

	view := l.View()
	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "biology.pdf #0")
	assert.Contains(t, view, "0.95")
	assert.Contains(t, view, "Mitosis is cell division.")
	assert.Contains(t, view, "d2 #1")
	assert.Contains(t, view, "> ")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(80, 7)
	l.SetResults(sampleResults())
	l.SetSelected(2)

	view := l.View()
	assert.Contains(t, view, "Untitled chunk")
	assert.NotContains(t, view, "Mitosis")
}

func TestResultList_View_LongTitle(t *testing.T) {
	l := NewResultList(nil)
	l.SetDimensions(40, 20)
	l.SetResults([]domain.SearchResult{{Filename: strings.Repeat("x", 80) + ".pdf", Text: "t"}})

	assert.Contains(t, l.View(), "...")
}
