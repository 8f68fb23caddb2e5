// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/styles"
)

// Input character limits.
const (
	SearchCharLimit   = 256
	QuestionCharLimit = 2000
)

// Prompt wraps a bubbles textinput with a label.
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewPrompt creates a focused labelled input.
func NewPrompt(s *styles.Styles, label, placeholder string, charLimit int) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 50

	return &Prompt{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// NewSearchInput creates the search query input.
func NewSearchInput(s *styles.Styles) *Prompt {
	return NewPrompt(s, "Search: ", "Search your notes...", SearchCharLimit)
}

// NewQuestionInput creates the question input of the ask view.
func NewQuestionInput(s *styles.Styles) *Prompt {
	return NewPrompt(s, "Ask: ", "Ask a question about your material...", QuestionCharLimit)
}

// Init starts the cursor blinking.
func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the label and input box.
func (p *Prompt) View() string {
	label := p.styles.Title.Render(p.label)
	box := p.styles.InputField.Render(p.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *Prompt) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *Prompt) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *Prompt) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *Prompt) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	inputWidth := width - lipgloss.Width(p.label) - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	p.textinput.Width = inputWidth
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}

// Reset clears the input.
func (p *Prompt) Reset() {
	p.textinput.Reset()
}
