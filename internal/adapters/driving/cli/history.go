package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent refresh runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of runs")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if refreshService == nil {
		return errors.New("refresh service not configured")
	}

	runs, err := refreshService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No refresh runs recorded.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		cmd.Printf("%s  %-6s  %8s  items=%d chunks=%d\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			r.Duration().Round(time.Millisecond),
			r.ItemsProcessed,
			r.ChunksAdded,
		)
		if r.Error != "" {
			cmd.Printf("    %s\n", r.Error)
		}
	}
	return nil
}
