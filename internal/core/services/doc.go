// Package services implements the driving port interfaces.
//
// The refresh path (Crawler, Scraper, IndexSynchronizer, RefreshService)
// rebuilds the catalog and the chunk index from the live site. The
// request path (IntentClassifier, SessionStore, ProductResolver,
// AnswerAssembler, AssistantService) turns one user message into an
// answer. Services talk to the outside world only through driven ports.
package services
