package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/keymap"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/messages"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/styles"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/views/ask"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/views/doccontent"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/views/documents"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/views/menu"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView       *menu.View
	searchView     *search.View
	askView        *ask.View
	documentsView  *documents.View
	docContentView *doccontent.View

	currentView messages.ViewType

	// err holds the last error any view reported.
	err error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		menuView:       menu.NewView(s, ports.Answers != nil),
		searchView:     search.NewView(s, km, ports.Search),
		askView:        ask.NewView(s, km, ports.Answers),
		documentsView:  documents.NewView(s, ports.Documents),
		docContentView: doccontent.NewView(s, ports.Documents),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.askView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("studybuddy"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewAsk:
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewDocuments:
			return a, a.documentsView.Init()
		case messages.ViewMenu, messages.ViewDocContent, messages.ViewHelp:
		}
		return a, nil

	case messages.DocumentSelected:
		back := a.currentView
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Document, back)

	case messages.SearchCompleted:
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.AnswerCompleted:
		var cmd tea.Cmd
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		var cmd tea.Cmd
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.err = a.documentsView.Err()
		return a, cmd

	case messages.DocumentContentLoaded:
		var cmd tea.Cmd
		a.docContentView, cmd = a.docContentView.Update(msg)
		a.err = a.docContentView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward hands msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back to Menu
  ctrl+c      Quit

Search:
  (type)      Enter search query
  enter       Submit search / open result's document
  j/k, ↑/↓    Navigate results
  n           New search

Ask:
  (type)      Enter a question
  enter       Ask
  ↑/↓, PgUp   Scroll the answer

Documents:
  enter       View document text
  d           Delete document
  r           Reload

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
}
