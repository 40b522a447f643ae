package domain

import "time"

// RefreshReport summarizes one refresh run.
type RefreshReport struct {
	URLsFound      int           `json:"urls_found"`
	RecordsScraped int           `json:"records_scraped"`
	ScrapeFailures int           `json:"scrape_failures"`
	RowsInserted   int           `json:"rows_inserted"`
	GeneralPages   int           `json:"general_pages"`
	ChunksAdded    int           `json:"chunks_added"`
	ChunksSkipped  int           `json:"chunks_skipped"`
	CrawlAborted   bool          `json:"crawl_aborted"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}

// ItemsProcessed is the count recorded in run history.
func (r RefreshReport) ItemsProcessed() int {
	return r.RecordsScraped + r.GeneralPages
}

// SyncResult is the outcome of one index synchronization.
type SyncResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
