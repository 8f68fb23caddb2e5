// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/components/input"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/components/status"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/keymap"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/messages"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/styles"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// ErrNoAnswerService indicates that no answer service was provided.
var ErrNoAnswerService = errors.New("answer service is required")

// View asks a question and shows the grounded answer with its sources.
type View struct {
	styles    *styles.Styles
	input     *input.Prompt
	viewport  viewport.Model
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	question string
	answer   *domain.Answer
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answerService driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:        s,
		input:         input.NewQuestionInput(s),
		viewport:      viewport.New(80, 14),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.question = question
		v.input.SetValue("")
		v.statusbar.SetState(status.StateThinking)
		return v, v.ask(question)
	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) ask(question string) tea.Cmd {
	svc, ctx := v.answerService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := svc.Ask(ctx, question, nil)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.question = msg.Question
	v.answer = msg.Answer
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetMessage("")
	if msg.Answer != nil {
		v.statusbar.SetResultCount(len(msg.Answer.Sources))
	}
	v.refreshViewport()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// refreshViewport renders the answer and sources into the viewport.
func (v *View) refreshViewport() {
	if v.answer == nil {
		v.viewport.SetContent("")
		return
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-6, 20))
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("Q: " + v.question))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Answer.Render(wrap.Render(v.answer.Answer)))
	b.WriteString("\n")

	if len(v.answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Sources"))
		b.WriteString("\n")
		for i, src := range v.answer.Sources {
			b.WriteString(v.styles.Citation.Render(fmt.Sprintf("[%d] %s (%.2f)", i+1, src.DocumentName, src.RelevanceScore)))
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(wrap.Render("    " + src.ChunkText)))
			b.WriteString("\n")
		}
	}

	v.viewport.SetContent(b.String())
	v.viewport.GotoTop()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("Ask StudyBuddy"), "",
		v.input.View(), "",
	}
	switch {
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.answer == nil:
		sections = append(sections, v.styles.Muted.Render("Answers use only your uploaded documents."))
	default:
		sections = append(sections, v.viewport.View())
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.viewport.Width = width
	v.viewport.Height = max(height-9, 3)
	v.refreshViewport()
}

// Answer returns the last answer.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Question returns the last question asked.
func (v *View) Question() string {
	return v.question
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset clears the question, answer and error.
func (v *View) Reset() {
	v.question = ""
	v.answer = nil
	v.err = nil
	v.input.SetValue("")
	v.input.Focus()
	v.statusbar.Clear()
	v.viewport.SetContent("")
}
