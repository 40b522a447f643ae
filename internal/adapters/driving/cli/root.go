// Package cli provides the shopdesk command line interface.
//
// Commands reach the core only through driving ports held in package
// variables. The binary supplies a Bootstrap that builds them once flags
// are parsed; tests assign the variables directly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// annotationSettingsOnly marks commands that need only the settings
// service, so they keep working while the rest of the configuration is
// broken.
const annotationSettingsOnly = "shopdesk/settings-only"

// annotationNoBootstrap marks commands that need no services at all.
const annotationNoBootstrap = "shopdesk/no-bootstrap"

var version = "dev"

var (
	verbose   bool
	configDir string
)

var (
	assistantService driving.AssistantService
	refreshService   driving.RefreshService
	settingsService  driving.SettingsService
	schedulerFactory func(interval time.Duration) driving.Scheduler
	promptWatcher    PromptWatcher
	siteProfile      *domain.SiteProfile
)

// PromptWatcher reloads prompt templates while a long-running command is up.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Services are the ports a command may use. Nil fields disable the
// commands that need them.
type Services struct {
	Assistant driving.AssistantService
	Refresh   driving.RefreshService
	Settings  driving.SettingsService

	// NewScheduler builds a scheduler refreshing every interval.
	NewScheduler func(interval time.Duration) driving.Scheduler

	Prompts     PromptWatcher
	SiteProfile *domain.SiteProfile
}

// Options are the global flags handed to the bootstrap.
type Options struct {
	ConfigDir string

	// SettingsOnly asks for the settings service alone.
	SettingsOnly bool
}

// Bootstrap builds the services for a command. The returned func
// releases them and may be nil.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap Bootstrap
	release   func()
)

var rootCmd = &cobra.Command{
	Use:   "shopdesk",
	Short: "Answer customer questions about a shop's catalog",
	Long: `shopdesk crawls a shop site, indexes its products and company pages,
and answers customer questions about prices, availability and policies.

Run 'shopdesk refresh' to build the index, then 'shopdesk ask' or
'shopdesk chat' to ask questions.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.shopdesk)")
}

// Execute runs the root command. b may be nil when services are assigned
// by other means.
func Execute(ctx context.Context, v string, b Bootstrap) error {
	if v != "" {
		version = v
	}
	bootstrap = b
	defer releaseServices()
	return rootCmd.ExecuteContext(ctx)
}

// SetServices installs svcs as the command ports.
func SetServices(svcs *Services) {
	if svcs == nil {
		return
	}
	assistantService = svcs.Assistant
	refreshService = svcs.Refresh
	settingsService = svcs.Settings
	schedulerFactory = svcs.NewScheduler
	promptWatcher = svcs.Prompts
	siteProfile = svcs.SiteProfile
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || hasAnnotation(cmd, annotationNoBootstrap) {
		return nil
	}

	opts := Options{
		ConfigDir:    configDir,
		SettingsOnly: hasAnnotation(cmd, annotationSettingsOnly),
	}
	svcs, closeFn, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrConfig) {
			return fmt.Errorf("%w (run 'shopdesk settings show' to inspect)", err)
		}
		return err
	}
	SetServices(svcs)
	release = closeFn
	return nil
}

func releaseServices() {
	if release != nil {
		release()
		release = nil
	}
	logger.Sync()
}

// hasAnnotation reports whether cmd or any parent carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}
