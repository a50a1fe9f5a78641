// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// RetrieveCompleted carries a retrieval result back to the model.
type RetrieveCompleted struct {
	Query  string
	Result *domain.RetrievalResult
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewRetrieve is the query input and ranked chunks view.
	ViewRetrieve
	// ViewContent shows a chunk or the assembled context.
	ViewContent
	// ViewCollection shows collection details.
	ViewCollection
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewRetrieve:
		return "retrieve"
	case ViewContent:
		return "content"
	case ViewCollection:
		return "collection"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ContentRequested asks the content view to display text.
type ContentRequested struct {
	Title   string
	Content string
	// Back is the view esc returns to.
	Back ViewType
}

// CollectionLoaded carries the collection description.
type CollectionLoaded struct {
	Info domain.CollectionInfo
	Err  error
}

// CollectionCleared signals the collection was emptied.
type CollectionCleared struct {
	Err error
}

// StatusMessage sets a transient status line message.
type StatusMessage struct {
	Text string
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
