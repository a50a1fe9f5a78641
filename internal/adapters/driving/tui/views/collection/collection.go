// Package collection provides the collection details view for the TUI.
package collection

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragcore/internal/core/domain"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// View shows the collection and offers a guarded clear.
type View struct {
	styles *styles.Styles
	rag    driving.RAGService
	ctx    context.Context

	info       *domain.CollectionInfo
	loading    bool
	confirming bool
	clearing   bool
	notice     string
	err        error
	width      int
	height     int
}

// NewView creates a new collection view.
func NewView(s *styles.Styles, rag driving.RAGService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		rag:    rag,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the collection details.
func (v *View) Init() tea.Cmd {
	v.confirming = false
	v.notice = ""
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.rag == nil {
		return nil
	}
	v.loading = true
	rag, ctx := v.rag, v.ctx
	return func() tea.Msg {
		info, err := rag.CollectionInfo(ctx)
		return messages.CollectionLoaded{Info: info, Err: err}
	}
}

func (v *View) clear() tea.Cmd {
	v.clearing = true
	rag, ctx := v.rag, v.ctx
	return func() tea.Msg {
		return messages.CollectionCleared{Err: rag.ClearAll(ctx)}
	}
}

// Update handles messages for the collection view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CollectionLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			info := msg.Info
			v.info = &info
		}
		return v, nil

	case messages.CollectionCleared:
		v.clearing = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = "Collection cleared"
		return v, v.load()
	}
	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.confirming {
		v.confirming = false
		if msg.String() == "y" && v.rag != nil {
			return v, v.clear()
		}
		v.notice = "Clear cancelled"
		return v, nil
	}

	switch msg.String() {
	case "r":
		v.notice = ""
		return v, v.load()
	case "D":
		if v.rag != nil {
			v.confirming = true
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

// View renders the collection view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collection"))
	b.WriteString("\n\n")

	switch {
	case v.rag == nil:
		b.WriteString(v.styles.Muted.Render("No collection configured"))
	case v.loading && v.info == nil:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.info != nil:
		rows := [][2]string{
			{"Name", v.info.Name},
			{"Backend", v.info.Backend},
			{"Location", v.info.Location},
			{"Records", fmt.Sprintf("%d", v.info.Count)},
			{"Model", v.info.EmbeddingModel.String()},
		}
		for _, row := range rows {
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-10s", row[0])))
			b.WriteString(v.styles.Normal.Render(row[1]))
			b.WriteString("\n")
		}
	}

	if v.err != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	}
	if v.clearing {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Clearing..."))
	}
	if v.confirming {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Delete every record? This cannot be undone. [y/N]"))
	}
	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [D] clear all  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Info returns the last loaded collection info, or nil.
func (v *View) Info() *domain.CollectionInfo {
	return v.info
}

// Confirming reports whether a clear is awaiting confirmation.
func (v *View) Confirming() bool {
	return v.confirming
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
