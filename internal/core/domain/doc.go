// Package domain defines the core business entities for shopdesk.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogItem: A scraped product record with its content hash
//   - InformationalPage: A scraped company page (about, contact, shipping)
//   - IndexedChunk: A unit stored in the chunk index, deduplicated by hash
//   - Intent: The closed set of query intents
//   - ConversationState: The follow-up state machine for one conversation
//   - SiteProfile: Selectors, page tables and keyword tables for the target site
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
