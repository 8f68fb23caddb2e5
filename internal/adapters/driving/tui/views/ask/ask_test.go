package ask

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/messages"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

type mockAnswerService struct {
	question string
	answer   *domain.Answer
	err      error
}

func (m *mockAnswerService) Ask(_ context.Context, question string, _ []string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

func typeText(v *View, text string) {
	for _, r := range text {
		v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func newReadyView(svc *mockAnswerService) *View {
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)
	return v
}

func TestView_Ask(t *testing.T) {
	svc := &mockAnswerService{answer: &domain.Answer{
		Answer: "Osmosis moves water across a membrane.",
		Sources: []domain.SourceReference{
			{DocumentID: "d1", DocumentName: "bio.pdf", ChunkText: "Osmosis is...", RelevanceScore: 0.9},
		},
	}}
	v := newReadyView(svc)
	assert.Contains(t, v.View(), "uploaded documents")

	typeText(v, "what is osmosis?")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "what is osmosis?", v.Question())

	v.Update(cmd())
	assert.Equal(t, "what is osmosis?", svc.question)
	require.NotNil(t, v.Answer())

	view := v.View()
	assert.Contains(t, view, "Osmosis moves water")
	assert.Contains(t, view, "[1] bio.pdf (0.90)")
	assert.Contains(t, view, "Answered from 1 sources")
}

func TestView_Ask_EmptyQuestionIgnored(t *testing.T) {
	v := newReadyView(&mockAnswerService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_Ask_Error(t *testing.T) {
	v := newReadyView(&mockAnswerService{err: errors.New("model offline")})

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.EqualError(t, v.Err(), "model offline")
	assert.Contains(t, v.View(), "Error: model offline")
}

func TestView_Ask_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)

	typeText(v, "q")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	v.Update(cmd())

	assert.ErrorIs(t, v.Err(), ErrNoAnswerService)
}

func TestView_EscAndReset(t *testing.T) {
	v := newReadyView(&mockAnswerService{})
	v.Update(messages.AnswerCompleted{Question: "q", Answer: &domain.Answer{Answer: domain.NoInformationAnswer}})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())

	v.Reset()
	assert.Nil(t, v.Answer())
	assert.Empty(t, v.Question())
	assert.NoError(t, v.Err())
}
