// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SiteClient: Fetches pages from the shop site
//   - PageExtractor: Pulls product and informational records out of a page
//   - CatalogStore: Product row persistence (drop-and-recreate per refresh)
//   - ChunkIndex: Chunk storage with similarity search and full listing
//   - LLMService: Answer generation
//   - ConfigStore: Application configuration
//   - PromptStore: Answer templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Used by index adapters only. Without it the local
//     index ranks by lexical similarity.
//   - SchedulerStore: Run history. Without it refreshes are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
