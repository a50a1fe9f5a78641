package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/views/collection"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/views/content"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/views/retrieve"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView       *menu.View
	retrieveView   *retrieve.View
	contentView    *content.View
	collectionView *collection.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
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
		keymap:         km,
		menuView:       menu.NewView(s),
		retrieveView:   retrieve.NewView(s, km, ports.RAG, ports.ResultAction, ports.ragSettings()),
		contentView:    content.NewView(s, ports.ResultAction),
		collectionView: collection.NewView(s, ports.RAG),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.retrieveView.WithContext(ctx)
	a.collectionView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("ragcore")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewRetrieve:
			return a, a.retrieveView.Init()
		case messages.ViewCollection:
			return a, a.collectionView.Init()
		case messages.ViewMenu, messages.ViewContent, messages.ViewHelp:
		}
		return a, nil

	case messages.ContentRequested:
		a.contentView.SetContent(msg)
		a.currentView = messages.ViewContent
		return a, nil

	case messages.RetrieveCompleted:
		a.retrieveView, cmd = a.retrieveView.Update(msg)
		a.err = a.retrieveView.Err()
		return a, cmd

	case messages.CollectionLoaded, messages.CollectionCleared:
		a.collectionView, cmd = a.collectionView.Update(msg)
		a.err = a.collectionView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward passes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewRetrieve:
		a.retrieveView, cmd = a.retrieveView.Update(msg)
	case messages.ViewContent:
		a.contentView, cmd = a.contentView.Update(msg)
	case messages.ViewCollection:
		a.collectionView, cmd = a.collectionView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
		}
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewRetrieve:
		return a.retrieveView.View()
	case messages.ViewContent:
		return a.contentView.View()
	case messages.ViewCollection:
		return a.collectionView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

// viewHelp renders the keybinding reference.
func (a *App) viewHelp() string {
	out := a.styles.Title.Render("Help") + "\n\n"
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			out += fmt.Sprintf("  %-8s %s\n", h.Key, h.Desc)
		}
		out += "\n"
	}
	return out + a.styles.Help.Render("[esc] back to menu")
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

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.retrieveView.SetDimensions(width, height)
	a.contentView.SetDimensions(width, height)
	a.collectionView.SetDimensions(width, height)
}
