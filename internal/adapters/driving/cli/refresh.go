package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

var refreshJSON bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the catalog and chunk index from the site",
	Long: `Crawls the shop site for product pages, scrapes every product and
informational page, replaces the catalog and adds new chunks to the index.
Chunks whose content is already indexed are skipped.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	if refreshService == nil {
		return errors.New("refresh service not configured")
	}

	if !refreshJSON {
		cmd.Println("Refreshing catalog...")
	}

	report, err := refreshService.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	if refreshJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, r *domain.RefreshReport) {
	cmd.Printf("  URLs found:       %d\n", r.URLsFound)
	cmd.Printf("  Records scraped:  %d\n", r.RecordsScraped)
	cmd.Printf("  Scrape failures:  %d\n", r.ScrapeFailures)
	cmd.Printf("  Rows inserted:    %d\n", r.RowsInserted)
	cmd.Printf("  General pages:    %d\n", r.GeneralPages)
	cmd.Printf("  Chunks added:     %d\n", r.ChunksAdded)
	cmd.Printf("  Chunks skipped:   %d\n", r.ChunksSkipped)
	if r.CrawlAborted {
		cmd.Println("  Crawl aborted early; the catalog may be incomplete.")
	}
	cmd.Printf("Refresh completed in %s.\n", r.Duration.Round(time.Millisecond))
}
