// Package retrieve provides the query and ranked chunks view for the TUI.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// View is the retrieval view: query input, ranked chunks and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	rag      driving.RAGService
	actions  driving.ResultActionService
	settings domain.RAGSettings
	ctx      context.Context

	result     *domain.RetrievalResult
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a new retrieve view. Zero TopK or MaxContextChars in
// settings fall back to the domain defaults.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	rag driving.RAGService,
	actions driving.ResultActionService,
	settings domain.RAGSettings,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if settings.TopK <= 0 {
		settings.TopK = domain.DefaultTopK
	}
	if settings.MaxContextChars <= 0 {
		settings.MaxContextChars = domain.DefaultMaxContextChars
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		rag:        rag,
		actions:    actions,
		settings:   settings,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context used for retrieval calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the retrieve view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RetrieveCompleted:
		v.handleRetrieveCompleted(msg)
		return v, nil

	case messages.StatusMessage:
		v.statusbar.SetMessage(msg.Text)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.err = nil
			v.statusbar.SetState(status.StateRetrieving)
			v.statusbar.SetMessage("")
			return v, v.performRetrieve(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(msg.String(), v.keymap.Select):
		return v, v.showSelected()
	case keymap.Matches(msg.String(), v.keymap.Context):
		return v, v.showContext()
	case keymap.Matches(msg.String(), v.keymap.Copy):
		return v, v.copySelected()
	case keymap.Matches(msg.String(), v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

// performRetrieve runs retrieval off the UI loop.
func (v *View) performRetrieve(query string) tea.Cmd {
	rag, ctx := v.rag, v.ctx
	req := domain.RetrieveRequest{
		Query:           query,
		TopK:            v.settings.TopK,
		MaxContextChars: v.settings.MaxContextChars,
	}
	return func() tea.Msg {
		if rag == nil {
			return messages.RetrieveCompleted{Query: query, Err: ErrNoRAGService}
		}
		result, err := rag.Retrieve(ctx, req)
		return messages.RetrieveCompleted{Query: query, Result: result, Err: err}
	}
}

// handleRetrieveCompleted stores the result and moves focus to the list.
func (v *View) handleRetrieveCompleted(msg messages.RetrieveCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.result = msg.Result
	v.list.SetResults(msg.Result.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResults(len(msg.Result.Results), len([]rune(msg.Result.Context)))
	if len(msg.Result.Results) == 0 {
		v.statusbar.SetMessage("no matching chunks")
	}

	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// showSelected opens the selected chunk in the content view.
func (v *View) showSelected() tea.Cmd {
	hit := v.list.SelectedResult()
	if hit == nil {
		return nil
	}
	title := fmt.Sprintf("%s, chunk %d (relevance %.3f)", hit.Metadata.Source, hit.Metadata.ChunkIndex, hit.Relevance())
	text := hit.Text
	return func() tea.Msg {
		return messages.ContentRequested{Title: title, Content: text, Back: messages.ViewRetrieve}
	}
}

// showContext opens the assembled context in the content view.
func (v *View) showContext() tea.Cmd {
	if v.result == nil {
		return nil
	}
	text := v.result.Context
	return func() tea.Msg {
		return messages.ContentRequested{Title: "Assembled context", Content: text, Back: messages.ViewRetrieve}
	}
}

// copySelected copies the selected chunk text to the clipboard.
func (v *View) copySelected() tea.Cmd {
	hit := v.list.SelectedResult()
	if hit == nil {
		return nil
	}
	if v.actions == nil {
		v.statusbar.SetMessage("copy not available")
		return nil
	}
	actions, ctx, text := v.actions, v.ctx, hit.Text
	return func() tea.Msg {
		if err := actions.CopyToClipboard(ctx, text); err != nil {
			return messages.StatusMessage{Text: "copy: " + err.Error()}
		}
		return messages.StatusMessage{Text: "copied to clipboard"}
	}
}

// View renders the retrieve view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("ragcore"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Result returns the last retrieval result, or nil.
func (v *View) Result() *domain.RetrievalResult {
	return v.result
}

// SelectedIndex returns the index of the selected chunk.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.result = nil
	v.err = nil
	v.statusbar.Clear()
}
