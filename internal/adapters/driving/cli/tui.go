package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the full-screen chat",
	Long: `Opens a full-screen chat with the shop assistant.

Keys:
  enter    send the message
  tab      browse indexed products, enter asks about one
  ctrl+r   refresh data from the live site
  ctrl+n   start a new conversation
  ctrl+c   quit`,
	Args: cobra.NoArgs,
	RunE: runTUICommand,
}

// runTUI starts the interactive program; tests replace it.
var runTUI = func(ctx context.Context, ports *tui.Ports) error {
	app, err := tui.NewApp(ports)
	if err != nil {
		return err
	}
	return app.WithContext(ctx).Run()
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUICommand(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startPromptWatcher(ctx)

	ports := &tui.Ports{
		Assistant: assistantService,
		Refresh:   refreshService,
	}
	if siteProfile != nil && siteProfile.Company != "" {
		ports.Title = siteProfile.Company + " Assistant"
	}
	return runTUI(ctx, ports)
}
