package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates a missing or invalid required setting.
	// Configuration errors are fatal at startup.
	ErrConfig = errors.New("invalid configuration")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the chunk index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRefreshInProgress indicates a refresh is already running.
	ErrRefreshInProgress = errors.New("refresh in progress")

	// Scrape Errors.

	// ErrFetch indicates a transport failure or an unusable HTTP status.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates the fetched document could not be parsed.
	ErrParse = errors.New("parse failed")

	// ErrPageSkipped indicates a page was deliberately excluded by a heuristic.
	ErrPageSkipped = errors.New("page skipped")

	// ErrDisallowed indicates robots.txt forbids fetching the URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// Answer Errors.

	// ErrProductNotFound indicates no product matched above threshold.
	ErrProductNotFound = errors.New("product not found")

	// ErrGenerationFailed indicates every generation attempt failed.
	ErrGenerationFailed = errors.New("generation failed")
)

// ScrapeErrorKind classifies a failed fetch or extraction.
type ScrapeErrorKind string

// Scrape error kinds.
const (
	ScrapeErrorFetch   ScrapeErrorKind = "fetch"
	ScrapeErrorParse   ScrapeErrorKind = "parse"
	ScrapeErrorSkipped ScrapeErrorKind = "skipped"
)

// ScrapeError reports why a single page produced no record.
// Batch callers count these rather than aborting.
type ScrapeError struct {
	URL  string
	Kind ScrapeErrorKind
	Err  error
}

// Error implements the error interface.
func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap exposes the kind sentinel and the underlying cause.
func (e *ScrapeError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case ScrapeErrorFetch:
		sentinel = ErrFetch
	case ScrapeErrorParse:
		sentinel = ErrParse
	case ScrapeErrorSkipped:
		sentinel = ErrPageSkipped
	}
	return []error{sentinel, e.Err}
}

// NewFetchError wraps a transport or status failure for url.
func NewFetchError(url string, err error) *ScrapeError {
	return &ScrapeError{URL: url, Kind: ScrapeErrorFetch, Err: err}
}

// NewParseError wraps an extraction failure for url.
func NewParseError(url string, err error) *ScrapeError {
	return &ScrapeError{URL: url, Kind: ScrapeErrorParse, Err: err}
}

// NewSkipError records a heuristic exclusion of url.
func NewSkipError(url, reason string) *ScrapeError {
	return &ScrapeError{URL: url, Kind: ScrapeErrorSkipped, Err: errors.New(reason)}
}
