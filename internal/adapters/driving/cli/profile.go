package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/adapters/driven/config/file"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the active site profile",
	Long: `Prints the site profile in use as YAML: selectors, categories,
informational pages and keyword tables. Save the output as site.yaml in the
configuration directory to customise it.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSettingsOnly: ""},
	RunE: func(cmd *cobra.Command, _ []string) error {
		if siteProfile == nil {
			return errors.New("site profile not loaded")
		}
		return file.EncodeSiteProfile(cmd.OutOrStdout(), *siteProfile)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
