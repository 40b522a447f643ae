// Package tui provides an interactive terminal chat for shopdesk.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Assistant answers questions and lists products.
	Assistant driving.AssistantService

	// Refresh rebuilds the catalog. Optional; without it the refresh key
	// reports that refreshing is unavailable.
	Refresh driving.RefreshService

	// Title heads the chat, usually the shop's assistant name.
	Title string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}

func (p *Ports) title() string {
	if p.Title == "" {
		return "Shop Assistant"
	}
	return p.Title
}
