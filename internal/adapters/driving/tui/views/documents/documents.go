// Package documents provides the documents list view component for the TUI.
package documents

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

// View lists uploaded documents and lets the user open or delete them.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	documents    []domain.Document
	selected     int
	scrollOffset int
	width        int
	height       int
	err          error
	notice       string
	loading      bool

	// confirmDelete is set while waiting for y/n on the selected document.
	confirmDelete bool
}

// NewView creates a new documents view.
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
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the documents.
func (v *View) Init() tea.Cmd {
	v.loading = true
	v.confirmDelete = false
	v.notice = ""
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) deleteDocument(id string) tea.Cmd {
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoDocumentService}
		}
		deleted, err := svc.Delete(ctx, id)
		return messages.DocumentDeleted{DocumentID: id, Deleted: deleted, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.confirmDelete {
			return v.handleConfirmKey(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		if v.selected >= len(v.documents) {
			v.selected = max(len(v.documents)-1, 0)
		}
		v.adjustScroll()
		return v, nil

	case messages.DocumentDeleted:
		switch {
		case msg.Err != nil:
			v.err = msg.Err
			return v, nil
		case !msg.Deleted:
			v.notice = "Document already removed: " + msg.DocumentID
		default:
			v.notice = "Deleted " + msg.DocumentID
		}
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if doc := v.SelectedDocument(); doc != nil {
			selected := *doc
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: selected}
			}
		}
	case "d":
		if v.SelectedDocument() != nil {
			v.confirmDelete = true
		}
	case "r":
		v.loading = true
		v.notice = ""
		return v, v.loadDocuments()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleConfirmKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	v.confirmDelete = false
	if msg.String() != "y" {
		return v, nil
	}
	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}
	return v, v.deleteDocument(doc.ID)
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents uploaded. Use 'studybuddy upload' to add some."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	if v.confirmDelete {
		if doc := v.SelectedDocument(); doc != nil {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %s and all its chunks? [y/N]", doc.Filename)))
			b.WriteString("\n")
		}
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] view text  [d] delete  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := doc.Filename
	maxName := max(v.width/2-4, 10)
	if len([]rune(name)) > maxName {
		name = string([]rune(name)[:maxName-3]) + "..."
	}
	meta := fmt.Sprintf("%-5s %-10s %3d chunks", doc.FileType, doc.Status, doc.ChunkCount)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxName, name, meta))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxName, name)) +
		v.styles.Muted.Render(meta)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.adjustScroll()
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// ConfirmingDelete reports whether a delete is awaiting confirmation.
func (v *View) ConfirmingDelete() bool {
	return v.confirmDelete
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
