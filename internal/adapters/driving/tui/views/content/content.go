// Package content provides a scrollable text view for chunks and assembled context.
package content

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragcore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragcore/internal/core/ports/driving"
)

// View displays a block of text with scrolling.
type View struct {
	styles  *styles.Styles
	actions driving.ResultActionService

	title        string
	content      string
	back         messages.ViewType
	lines        []string
	scrollOffset int
	width        int
	height       int
	status       string
}

// NewView creates a new content view.
func NewView(s *styles.Styles, actions driving.ResultActionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		actions: actions,
		back:    messages.ViewRetrieve,
		width:   80,
		height:  24,
	}
}

// SetContent replaces the displayed text and resets scrolling.
func (v *View) SetContent(msg messages.ContentRequested) {
	v.title = msg.Title
	v.content = msg.Content
	v.back = msg.Back
	v.scrollOffset = 0
	v.status = ""
	v.wrapContent()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.StatusMessage:
		v.status = msg.Text
		return v, nil
	}
	return v, nil
}

// handleKeyMsg handles key presses.
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
	case "c":
		return v, v.copyAll()
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}
	return v, nil
}

// copyAll copies the displayed text to the clipboard.
func (v *View) copyAll() tea.Cmd {
	if v.actions == nil || v.content == "" {
		v.status = "nothing to copy"
		return nil
	}
	actions, text := v.actions, v.content
	return func() tea.Msg {
		if err := actions.CopyToClipboard(context.Background(), text); err != nil {
			return messages.StatusMessage{Text: "copy: " + err.Error()}
		}
		return messages.StatusMessage{Text: "copied to clipboard"}
	}
}

// wrapContent hard-wraps lines to the view width.
func (v *View) wrapContent() {
	if v.content == "" {
		v.lines = nil
		return
	}

	width := max(v.width-4, 20)
	raw := strings.Split(v.content, "\n")
	v.lines = make([]string, 0, len(raw))

	for _, line := range raw {
		runes := []rune(line)
		for len(runes) > width {
			v.lines = append(v.lines, string(runes[:width]))
			runes = runes[width:]
		}
		v.lines = append(v.lines, string(runes))
	}
}

// visibleLines returns the number of content lines that fit.
func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the content view.
func (v *View) View() string {
	var b strings.Builder

	title := v.title
	if title == "" {
		title = "Content"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("(No content)"))
	} else {
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(v.lines))
		for _, line := range v.lines[v.scrollOffset:end] {
			if strings.HasPrefix(line, "[Document: ") {
				b.WriteString(v.styles.Citation.Render(line))
			} else {
				b.WriteString(v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
		if len(v.lines) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d",
				v.scrollOffset+1, end, len(v.lines))))
		}
	}

	if v.status != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(v.status))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [c] copy  [esc] back"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.wrapContent()
}

// Title returns the current title.
func (v *View) Title() string {
	return v.title
}

// Content returns the displayed text.
func (v *View) Content() string {
	return v.content
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}
