// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// AnswerReceived carries the assistant's reply to a question.
type AnswerReceived struct {
	ConversationID string
	Question       string
	Answer         *domain.Answer
	Err            error
}

// RefreshCompleted carries the outcome of a catalog refresh.
type RefreshCompleted struct {
	Report *domain.RefreshReport
	Err    error
}

// ProductsLoaded carries the indexed product listing.
type ProductsLoaded struct {
	Products []domain.ProductSummary
	Err      error
}

// ProductChosen asks the chat about a product picked from the list.
type ProductChosen struct {
	Product domain.ProductSummary
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view.
	ViewChat ViewType = iota
	// ViewProducts lists the indexed products.
	ViewProducts
)

// Quit requests application exit.
type Quit struct{}
