package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySiteBaseURL   = "site.base_url"
	keySiteProfile   = "site.profile"
	keySiteUserAgent = "site.user_agent"

	keyCrawlStrategy = "crawl.strategy"
	keyCrawlMaxDepth = "crawl.max_depth"
	keyCrawlMaxPages = "crawl.max_pages"
	keyCrawlWorkers  = "crawl.workers"
	keyCrawlRate     = "crawl.rate"
	keyCrawlTimeout  = "crawl.timeout"
	keyCrawlRobots   = "crawl.respect_robots"

	keyScrapeWorkers = "scrape.workers"

	keyIndexBackend    = "index.backend"
	keyIndexTopK       = "index.top_k"
	keyIndexQdrantURL  = "index.qdrant_url"
	keyIndexCollection = "index.qdrant_collection"
	keyIndexPipeline   = "index.pipeline"
	keyIndexChunkSize  = "index.chunk_size"
	keyIndexOverlap    = "index.chunk_overlap"

	keyAnswerSemantic    = "answer.semantic_threshold"
	keyAnswerLexical     = "answer.lexical_threshold"
	keyAnswerSoft        = "answer.soft_threshold"
	keyAnswerRelevance   = "answer.relevance_floor"
	keyAnswerBudget      = "answer.context_budget"
	keyAnswerHistory     = "answer.history_messages"
	keyAnswerRetries     = "answer.retries"
	keyAnswerBackoff     = "answer.retry_backoff"
	keyAnswerTimeout     = "answer.timeout"
	keyAnswerMaxTokens   = "answer.max_tokens"
	keyAnswerTemperature = "answer.temperature"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"

	keyStorageCatalog  = "storage.catalog"
	keyStorageMongoURI = "storage.mongo_uri"
	keyStorageMongoDB  = "storage.mongo_database"

	keyScheduleRefresh = "schedule.refresh_interval"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]settingKind{
	keySiteBaseURL: kindString, keySiteProfile: kindString, keySiteUserAgent: kindString,

	keyCrawlStrategy: kindString, keyCrawlMaxDepth: kindInt, keyCrawlMaxPages: kindInt,
	keyCrawlWorkers: kindInt, keyCrawlRate: kindFloat, keyCrawlTimeout: kindDuration,
	keyCrawlRobots: kindBool,

	keyScrapeWorkers: kindInt,

	keyIndexBackend: kindString, keyIndexTopK: kindInt, keyIndexQdrantURL: kindString,
	keyIndexCollection: kindString, keyIndexPipeline: kindList, keyIndexChunkSize: kindInt,
	keyIndexOverlap: kindInt,

	keyAnswerSemantic: kindFloat, keyAnswerLexical: kindFloat, keyAnswerSoft: kindFloat,
	keyAnswerRelevance: kindFloat, keyAnswerBudget: kindInt, keyAnswerHistory: kindInt,
	keyAnswerRetries: kindInt, keyAnswerBackoff: kindDuration, keyAnswerTimeout: kindDuration,
	keyAnswerMaxTokens: kindInt, keyAnswerTemperature: kindFloat,

	keyLLMProvider: kindString, keyLLMModel: kindString, keyLLMBaseURL: kindString,
	keyLLMAPIKey: kindString,

	keyEmbedProvider: kindString, keyEmbedModel: kindString, keyEmbedBaseURL: kindString,
	keyEmbedAPIKey: kindString,

	keyStorageCatalog: kindString, keyStorageMongoURI: kindString, keyStorageMongoDB: kindString,

	keyScheduleRefresh: kindDuration,
}

type settingValue struct {
	key string
	val any
}

// SettingKeys returns every settable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Site: domain.SiteSettings{
			BaseURL:     s.getString(keySiteBaseURL, d.Site.BaseURL),
			ProfilePath: s.getString(keySiteProfile, d.Site.ProfilePath),
			UserAgent:   s.getString(keySiteUserAgent, d.Site.UserAgent),
		},
		Crawl: domain.CrawlSettings{
			Strategy:          domain.CrawlStrategy(s.getString(keyCrawlStrategy, d.Crawl.Strategy.String())),
			MaxDepth:          s.getInt(keyCrawlMaxDepth, d.Crawl.MaxDepth),
			MaxPages:          s.getInt(keyCrawlMaxPages, d.Crawl.MaxPages),
			Workers:           s.getInt(keyCrawlWorkers, d.Crawl.Workers),
			RequestsPerSecond: s.getFloat(keyCrawlRate, d.Crawl.RequestsPerSecond),
			Timeout:           s.getDuration(keyCrawlTimeout, d.Crawl.Timeout),
			RespectRobots:     s.getBool(keyCrawlRobots, d.Crawl.RespectRobots),
		},
		Scrape: domain.ScrapeSettings{
			Workers: s.getInt(keyScrapeWorkers, d.Scrape.Workers),
		},
		Index: domain.IndexSettings{
			Backend:          domain.IndexBackend(s.getString(keyIndexBackend, string(d.Index.Backend))),
			TopK:             s.getInt(keyIndexTopK, d.Index.TopK),
			QdrantURL:        s.getString(keyIndexQdrantURL, d.Index.QdrantURL),
			QdrantCollection: s.getString(keyIndexCollection, d.Index.QdrantCollection),
			Pipeline:         s.getPipeline(d.Index.Pipeline),
		},
		Answer: domain.AnswerSettings{
			SemanticThreshold: s.getFloat(keyAnswerSemantic, d.Answer.SemanticThreshold),
			LexicalThreshold:  s.getFloat(keyAnswerLexical, d.Answer.LexicalThreshold),
			SoftThreshold:     s.getFloat(keyAnswerSoft, d.Answer.SoftThreshold),
			RelevanceFloor:    s.getFloat(keyAnswerRelevance, d.Answer.RelevanceFloor),
			ContextBudget:     s.getInt(keyAnswerBudget, d.Answer.ContextBudget),
			HistoryMessages:   s.getInt(keyAnswerHistory, d.Answer.HistoryMessages),
			Retries:           s.getInt(keyAnswerRetries, d.Answer.Retries),
			RetryBackoff:      s.getDuration(keyAnswerBackoff, d.Answer.RetryBackoff),
			Timeout:           s.getDuration(keyAnswerTimeout, d.Answer.Timeout),
			MaxTokens:         s.getInt(keyAnswerMaxTokens, d.Answer.MaxTokens),
			Temperature:       s.getFloat(keyAnswerTemperature, d.Answer.Temperature),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:    s.getString(keyLLMModel, ""),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, ""),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		Storage: domain.StorageSettings{
			Catalog:       domain.CatalogBackend(s.getString(keyStorageCatalog, string(d.Storage.Catalog))),
			MongoURI:      s.configStore.GetString(keyStorageMongoURI),
			MongoDatabase: s.getString(keyStorageMongoDB, d.Storage.MongoDatabase),
		},
		Schedule: domain.ScheduleSettings{
			RefreshInterval: s.getDuration(keyScheduleRefresh, d.Schedule.RefreshInterval),
		},
	}

	// Fill model defaults for the chosen provider
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	return settings, nil
}

// Save persists application settings. Empty API keys are not written so
// that keys supplied through the environment never reach disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []settingValue{
		{keySiteBaseURL, settings.Site.BaseURL},
		{keySiteProfile, settings.Site.ProfilePath},
		{keySiteUserAgent, settings.Site.UserAgent},
		{keyCrawlStrategy, settings.Crawl.Strategy.String()},
		{keyCrawlMaxDepth, settings.Crawl.MaxDepth},
		{keyCrawlMaxPages, settings.Crawl.MaxPages},
		{keyCrawlWorkers, settings.Crawl.Workers},
		{keyCrawlRate, settings.Crawl.RequestsPerSecond},
		{keyCrawlTimeout, settings.Crawl.Timeout.String()},
		{keyCrawlRobots, settings.Crawl.RespectRobots},
		{keyScrapeWorkers, settings.Scrape.Workers},
		{keyIndexBackend, string(settings.Index.Backend)},
		{keyIndexTopK, settings.Index.TopK},
		{keyIndexQdrantURL, settings.Index.QdrantURL},
		{keyIndexCollection, settings.Index.QdrantCollection},
		{keyIndexPipeline, settings.Index.Pipeline.Processors},
		{keyAnswerSemantic, settings.Answer.SemanticThreshold},
		{keyAnswerLexical, settings.Answer.LexicalThreshold},
		{keyAnswerSoft, settings.Answer.SoftThreshold},
		{keyAnswerRelevance, settings.Answer.RelevanceFloor},
		{keyAnswerBudget, settings.Answer.ContextBudget},
		{keyAnswerHistory, settings.Answer.HistoryMessages},
		{keyAnswerRetries, settings.Answer.Retries},
		{keyAnswerBackoff, settings.Answer.RetryBackoff.String()},
		{keyAnswerTimeout, settings.Answer.Timeout.String()},
		{keyAnswerMaxTokens, settings.Answer.MaxTokens},
		{keyAnswerTemperature, settings.Answer.Temperature},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyStorageCatalog, string(settings.Storage.Catalog)},
		{keyStorageMongoDB, settings.Storage.MongoDatabase},
		{keyScheduleRefresh, settings.Schedule.RefreshInterval.String()},
	}

	if cfg := settings.Index.Pipeline.GetProcessorConfig("chunker"); cfg != nil {
		if v, ok := cfg["chunk_size"]; ok {
			values = append(values, settingValue{keyIndexChunkSize, v})
		}
		if v, ok := cfg["overlap"]; ok {
			values = append(values, settingValue{keyIndexOverlap, v})
		}
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.Storage.MongoURI != "" {
		if err := s.configStore.Set(keyStorageMongoURI, settings.Storage.MongoURI); err != nil {
			return fmt.Errorf("save storage mongo_uri: %w", err)
		}
	}

	return nil
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var parsed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 30s", domain.ErrInvalidInput, key)
		}
		parsed = value
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	default:
		parsed = value
	}

	if err := validateEnum(key, value); err != nil {
		return err
	}

	return s.configStore.Set(key, parsed)
}

func validateEnum(key, value string) error {
	var valid bool
	switch key {
	case keyCrawlStrategy:
		valid = domain.CrawlStrategy(value).IsValid()
	case keyIndexBackend:
		valid = domain.IndexBackend(value).IsValid()
	case keyStorageCatalog:
		valid = domain.CatalogBackend(value).IsValid()
	case keyLLMProvider:
		valid = domain.AIProvider(value).IsValid()
	case keyEmbedProvider:
		valid = value == "" || containsProvider(domain.AllEmbeddingProviders(), domain.AIProvider(value))
	default:
		return nil
	}
	if !valid {
		return fmt.Errorf("%w: invalid value %q for %s", domain.ErrInvalidInput, value, key)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if provider.IsLocal() {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = domain.DefaultBaseURLs()[provider]
		}
	} else {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = domain.DefaultBaseURLs()[provider]
		}
	} else {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings. Every failure wraps domain.ErrConfig.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks settings without touching the store.
func ValidateSettings(settings *domain.AppSettings) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", domain.ErrConfig, fmt.Sprintf(format, args...))
	}

	if !settings.Crawl.Strategy.IsValid() {
		return fail("invalid crawl.strategy %q", settings.Crawl.Strategy)
	}
	if settings.Crawl.MaxDepth < 0 {
		return fail("crawl.max_depth must not be negative")
	}
	if settings.Crawl.Workers < 1 || settings.Scrape.Workers < 1 {
		return fail("crawl.workers and scrape.workers must be at least 1")
	}
	if settings.Crawl.Timeout <= 0 {
		return fail("crawl.timeout must be positive")
	}

	if !settings.Index.Backend.IsValid() {
		return fail("invalid index.backend %q", settings.Index.Backend)
	}
	if settings.Index.TopK < 1 {
		return fail("index.top_k must be at least 1")
	}
	if settings.Index.Backend == domain.IndexBackendQdrant {
		if settings.Index.QdrantURL == "" {
			return fail("index.qdrant_url is required for the qdrant backend")
		}
		if !settings.Embedding.IsConfigured() {
			return fail("the qdrant backend requires an embedding provider")
		}
	}

	for name, v := range map[string]float64{
		keyAnswerSemantic:  settings.Answer.SemanticThreshold,
		keyAnswerLexical:   settings.Answer.LexicalThreshold,
		keyAnswerSoft:      settings.Answer.SoftThreshold,
		keyAnswerRelevance: settings.Answer.RelevanceFloor,
	} {
		if v < 0 || v > 100 {
			return fail("%s must be between 0 and 100", name)
		}
	}
	if settings.Answer.Retries < 1 {
		return fail("answer.retries must be at least 1")
	}
	if settings.Answer.Timeout <= 0 {
		return fail("answer.timeout must be positive")
	}

	if !settings.LLM.Provider.IsValid() {
		return fail("invalid llm.provider %q", settings.LLM.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fail("llm.api_key is required for %s", settings.LLM.Provider)
	}
	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fail("embedding.api_key is required for %s", settings.Embedding.Provider)
	}

	if !settings.Storage.Catalog.IsValid() {
		return fail("invalid storage.catalog %q", settings.Storage.Catalog)
	}
	if settings.Storage.Catalog == domain.CatalogBackendMongo && settings.Storage.MongoURI == "" {
		return fail("storage.mongo_uri is required for the mongo catalog")
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getPipeline(defaultVal domain.PipelineConfig) domain.PipelineConfig {
	cfg := defaultVal
	if names := s.configStore.GetStringSlice(keyIndexPipeline); len(names) > 0 {
		cfg.Processors = names
	}

	chunker := map[string]any{}
	for k, v := range defaultVal.GetProcessorConfig("chunker") {
		chunker[k] = v
	}
	if _, ok := s.configStore.Get(keyIndexChunkSize); ok {
		chunker["chunk_size"] = s.configStore.GetInt(keyIndexChunkSize)
	}
	if _, ok := s.configStore.Get(keyIndexOverlap); ok {
		chunker["overlap"] = s.configStore.GetInt(keyIndexOverlap)
	}
	cfg.ProcessorConfigs = map[string]map[string]any{"chunker": chunker}
	return cfg
}

func containsProvider(list []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}
