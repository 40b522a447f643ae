package driving

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// AssistantService answers customer questions within a conversation.
type AssistantService interface {
	// Ask answers query in the conversation identified by conversationID.
	// Request-path failures are turned into fixed answers; the returned
	// error is reserved for cancellation and misconfiguration.
	Ask(ctx context.Context, conversationID, query string) (*domain.Answer, error)

	// Reset clears the state and history of a conversation.
	Reset(conversationID string)

	// ListProducts returns the indexed products ordered by category then name.
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
}
