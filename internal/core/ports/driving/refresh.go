package driving

import (
	"context"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// RefreshService rebuilds the catalog and the chunk index from the live site.
type RefreshService interface {
	// Refresh crawls, scrapes, replaces the catalog and syncs the index,
	// in that order. Only one refresh runs at a time.
	Refresh(ctx context.Context) (*domain.RefreshReport, error)

	// History returns recent refresh runs, most recent first.
	History(ctx context.Context, limit int) ([]domain.TaskResult, error)
}
