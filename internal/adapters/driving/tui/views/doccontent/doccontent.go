// Package doccontent provides the document text view component for the TUI.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/messages"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/styles"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View shows the chunks of one document as scrollable text.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	document     *domain.Document
	chunks       []domain.Chunk
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool

	// back is the view esc returns to.
	back messages.ViewType
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		back:            messages.ViewDocuments,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument sets the document, the view to return to, and loads its chunks.
func (v *View) SetDocument(doc domain.Document, back messages.ViewType) tea.Cmd {
	v.document = &doc
	v.back = back
	v.chunks = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) loadContent() tea.Cmd {
	svc, ctx, id := v.documentService, v.ctx, v.document.ID
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentContentLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		chunks, err := svc.Chunks(ctx, id)
		return messages.DocumentContentLoaded{DocumentID: id, Chunks: chunks, Err: err}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentContentLoaded:
		if v.document == nil || msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.chunks = msg.Chunks
		v.wrapContent()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}
	return v, nil
}

// wrapContent lays the chunks out as lines that fit the view width.
func (v *View) wrapContent() {
	v.lines = nil
	if len(v.chunks) == 0 {
		return
	}

	width := max(v.width-4, 20)
	for i, c := range v.chunks {
		if i > 0 {
			v.lines = append(v.lines, "")
		}
		v.lines = append(v.lines, fmt.Sprintf("── chunk %d ──", c.Index))
		for _, line := range strings.Split(c.Text, "\n") {
			v.lines = append(v.lines, wrapLine(line, width)...)
		}
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// wrapLine splits line into pieces of at most width runes.
func wrapLine(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = v.document.Filename
		if title == "" {
			title = v.document.ID
		}
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
		b.WriteString("\n\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No content)"))
		b.WriteString("\n\n")
	default:
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		for _, line := range v.lines[v.scrollOffset:end] {
			b.WriteString(v.styles.Normal.Render(line))
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			percentage := 0
			if m := v.maxScrollOffset(); m > 0 {
				percentage = v.scrollOffset * 100 / m
			}
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d%%] Line %d-%d of %d",
				percentage, v.scrollOffset+1, end, len(v.lines))))
		}
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Lines returns the wrapped text lines.
func (v *View) Lines() []string {
	return v.lines
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
