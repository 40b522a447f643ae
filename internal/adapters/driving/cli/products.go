package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var productsJSON bool

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List indexed products by category",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

func init() {
	productsCmd.Flags().BoolVar(&productsJSON, "json", false, "output products as JSON")
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	products, err := assistantService.ListProducts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if productsJSON {
		data, err := json.MarshalIndent(products, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal products: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(products) == 0 {
		cmd.Println("No products indexed. Run 'shopdesk refresh' first.")
		return nil
	}

	// Products arrive ordered by category, then name.
	category := ""
	for i, p := range products {
		if i == 0 || p.Category != category {
			if i > 0 {
				cmd.Println()
			}
			category = p.Category
			cmd.Printf("[%s]\n", category)
		}
		cmd.Printf("  %s - %s\n", p.Name, p.Price)
		cmd.Printf("      %s\n", p.URL)
	}
	cmd.Printf("\n%d products\n", len(products))
	return nil
}
