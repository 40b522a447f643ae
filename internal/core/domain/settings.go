package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects where chunks are stored.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite keeps chunks and embeddings in the local database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendQdrant stores chunks in a Qdrant collection.
	IndexBackendQdrant IndexBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	return b == IndexBackendSQLite || b == IndexBackendQdrant
}

// CatalogBackend selects where scraped product rows are stored.
type CatalogBackend string

// Available catalog backends.
const (
	CatalogBackendSQLite CatalogBackend = "sqlite"
	CatalogBackendMongo  CatalogBackend = "mongo"
)

// IsValid returns true if the backend is recognised.
func (b CatalogBackend) IsValid() bool {
	return b == CatalogBackendSQLite || b == CatalogBackendMongo
}

// SiteSettings locates the target shop.
type SiteSettings struct {
	// BaseURL overrides the site profile's base URL when set.
	BaseURL string

	// ProfilePath is the site profile YAML file. Empty uses the built-in profile.
	ProfilePath string

	// UserAgent is sent with every request.
	UserAgent string
}

// CrawlSettings controls product discovery.
type CrawlSettings struct {
	Strategy CrawlStrategy
	MaxDepth int

	// MaxPages bounds category pagination per category.
	MaxPages int

	// Workers is the number of concurrent fetches per BFS level.
	Workers int

	// RequestsPerSecond is the polite crawl rate across all workers.
	RequestsPerSecond float64

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RespectRobots enables robots.txt checks.
	RespectRobots bool
}

// ScrapeSettings controls page extraction.
type ScrapeSettings struct {
	// Workers is the number of concurrent product scrapes.
	Workers int
}

// IndexSettings controls the chunk index.
type IndexSettings struct {
	Backend IndexBackend

	// TopK is the number of chunks fetched per similarity search.
	TopK int

	// QdrantURL is the Qdrant REST endpoint.
	QdrantURL string

	// QdrantCollection is the collection holding chunks.
	QdrantCollection string

	// Pipeline configures chunking and hashing before submission.
	Pipeline PipelineConfig
}

// AnswerSettings controls resolution thresholds and generation policy.
type AnswerSettings struct {
	// SemanticThreshold accepts a semantic-stage candidate (0-100).
	SemanticThreshold float64

	// LexicalThreshold accepts a lexical-stage candidate (0-100).
	LexicalThreshold float64

	// SoftThreshold accepts a lexical candidate corroborated by the semantic stage.
	SoftThreshold float64

	// RelevanceFloor gates general answers (0-100).
	RelevanceFloor float64

	// ContextBudget caps general context in characters.
	ContextBudget int

	// HistoryMessages is how many recent messages reach the prompt.
	HistoryMessages int

	Retries      int
	RetryBackoff time.Duration
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider. Empty disables embeddings.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for cloud providers).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Catalog selects the product row store.
	Catalog CatalogBackend

	// MongoURI is the connection string for the mongo catalog.
	MongoURI string

	// MongoDatabase is the database holding the products collection.
	MongoDatabase string
}

// ScheduleSettings controls the background refresh.
type ScheduleSettings struct {
	RefreshInterval time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Site      SiteSettings
	Crawl     CrawlSettings
	Scrape    ScrapeSettings
	Index     IndexSettings
	Answer    AnswerSettings
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
	Schedule  ScheduleSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM defaults to Groq, matching the hosted deployment; the key comes
// from the environment. Embeddings are off until configured, in which case
// the local index ranks lexically.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Site: SiteSettings{
			UserAgent: "Mozilla/5.0 (compatible; shopdesk/1.0)",
		},
		Crawl: CrawlSettings{
			Strategy:          CrawlStrategyLinks,
			MaxDepth:          2,
			MaxPages:          50,
			Workers:           4,
			RequestsPerSecond: 4,
			Timeout:           10 * time.Second,
			RespectRobots:     true,
		},
		Scrape: ScrapeSettings{
			Workers: 4,
		},
		Index: IndexSettings{
			Backend:          IndexBackendSQLite,
			TopK:             5,
			QdrantURL:        "http://localhost:6333",
			QdrantCollection: "shopdesk",
			Pipeline:         DefaultPipelineConfig(),
		},
		Answer: AnswerSettings{
			SemanticThreshold: 88,
			LexicalThreshold:  80,
			SoftThreshold:     60,
			RelevanceFloor:    50,
			ContextBudget:     4000,
			HistoryMessages:   6,
			Retries:           3,
			RetryBackoff:      time.Second,
			Timeout:           60 * time.Second,
			MaxTokens:         1024,
			Temperature:       0,
		},
		LLM: LLMSettings{
			Provider: AIProviderGroq,
			Model:    DefaultLLMModels()[AIProviderGroq],
		},
		Embedding: EmbeddingSettings{},
		Storage: StorageSettings{
			Catalog:       CatalogBackendSQLite,
			MongoDatabase: "shopdesk",
		},
		Schedule: ScheduleSettings{
			RefreshInterval: 24 * time.Hour,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGroq,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderGroq:      "llama-3.3-70b-versatile",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultBaseURLs returns the API endpoint for each provider.
func DefaultBaseURLs() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "http://localhost:11434",
		AIProviderOpenAI:    "https://api.openai.com/v1",
		AIProviderGroq:      "https://api.groq.com/openai/v1",
		AIProviderAnthropic: "https://api.anthropic.com/v1",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors need no struct change.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// chunk into overlapping windows, then stamp each chunk's hash.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "hasher"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
		},
	}
}
