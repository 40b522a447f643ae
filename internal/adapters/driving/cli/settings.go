package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the target site, crawl limits, answer thresholds,
AI providers and storage backends.

Settings live in config.toml in the configuration directory. API keys
found in the environment or a .env file take precedence and are never
written to the file.`,
	Annotations: map[string]string{annotationSettingsOnly: ""},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  shopdesk settings set site.base_url https://shop.example.com
  shopdesk settings set answer.retries 5
  shopdesk settings set index.backend qdrant`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for semantic chunk search.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used to generate answers.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Site]")
	cmd.Printf("  Base URL: %s\n", valueOrUnset(settings.Site.BaseURL))
	cmd.Printf("  Profile: %s\n", valueOr(settings.Site.ProfilePath, "(built-in)"))
	cmd.Printf("  User Agent: %s\n", settings.Site.UserAgent)
	cmd.Println()

	cmd.Println("[Crawl]")
	cmd.Printf("  Strategy: %s\n", settings.Crawl.Strategy)
	cmd.Printf("  Max Depth: %d\n", settings.Crawl.MaxDepth)
	cmd.Printf("  Max Pages: %d\n", settings.Crawl.MaxPages)
	cmd.Printf("  Workers: %d\n", settings.Crawl.Workers)
	cmd.Printf("  Rate: %g req/s\n", settings.Crawl.RequestsPerSecond)
	cmd.Printf("  Timeout: %s\n", settings.Crawl.Timeout)
	cmd.Printf("  Respect robots.txt: %t\n", settings.Crawl.RespectRobots)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	if settings.Index.Backend == domain.IndexBackendQdrant {
		cmd.Printf("  Qdrant URL: %s\n", settings.Index.QdrantURL)
		cmd.Printf("  Collection: %s\n", settings.Index.QdrantCollection)
	}
	cmd.Printf("  Top K: %d\n", settings.Index.TopK)
	cmd.Printf("  Pipeline: %s\n", strings.Join(settings.Index.Pipeline.Processors, ", "))
	cmd.Println()

	cmd.Println("[Answer]")
	cmd.Printf("  Thresholds: semantic %g, lexical %g, soft %g\n",
		settings.Answer.SemanticThreshold, settings.Answer.LexicalThreshold, settings.Answer.SoftThreshold)
	cmd.Printf("  Relevance Floor: %g\n", settings.Answer.RelevanceFloor)
	cmd.Printf("  Context Budget: %d chars\n", settings.Answer.ContextBudget)
	cmd.Printf("  Retries: %d (backoff %s)\n", settings.Answer.Retries, settings.Answer.RetryBackoff)
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model, settings.LLM.BaseURL, settings.LLM.APIKey)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Embedding]")
	if settings.Embedding.Provider == "" {
		cmd.Println("  Provider: (none, lexical ranking)")
	} else {
		printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
			settings.Embedding.BaseURL, settings.Embedding.APIKey)
		cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Catalog: %s\n", settings.Storage.Catalog)
	if settings.Storage.Catalog == domain.CatalogBackendMongo {
		if settings.Storage.MongoURI != "" {
			cmd.Printf("  Mongo URI: %s\n", maskAPIKey(settings.Storage.MongoURI))
		} else {
			cmd.Println("  Mongo URI: (not set)")
		}
		cmd.Printf("  Mongo Database: %s\n", settings.Storage.MongoDatabase)
	}
	cmd.Println()

	cmd.Println("[Schedule]")
	cmd.Printf("  Refresh Interval: %s\n", settings.Schedule.RefreshInterval)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'shopdesk settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" || provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", valueOr(baseURL, domain.DefaultBaseURLs()[provider]))
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "mongo_uri") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	cmd.Println("Run 'shopdesk refresh' to embed the index with the new provider.")
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal, else a plain line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func valueOrUnset(v string) string {
	return valueOr(v, "(not set)")
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
