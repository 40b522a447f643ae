// Package mcp provides an MCP (Model Context Protocol) server adapter for shopdesk.
// It lets AI assistants ask catalog questions and trigger refreshes.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")

// ErrRefreshUnavailable is returned by the refresh tool when no refresh service is wired.
var ErrRefreshUnavailable = errors.New("mcp: refresh is not available")
