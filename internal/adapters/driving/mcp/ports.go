package mcp

import (
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers questions and lists products.
	Assistant driving.AssistantService

	// Refresh rebuilds the catalog. Optional; the refresh tool reports
	// ErrRefreshUnavailable without it.
	Refresh driving.RefreshService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
