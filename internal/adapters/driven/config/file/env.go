package file

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// Environment variables read by ApplyEnvironment.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	EnvLLMAPIKey       = "SHOPDESK_LLM_API_KEY"
	EnvEmbeddingAPIKey = "SHOPDESK_EMBEDDING_API_KEY"
	EnvMongoURI        = "SHOPDESK_MONGO_URI"

	// EnvQdrantAPIKey is read directly when the qdrant index is opened.
	EnvQdrantAPIKey = "SHOPDESK_QDRANT_API_KEY"
)

// providerKeyEnv maps a cloud provider to its conventional key variable.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderGroq:      "GROQ_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// LoadDotEnv loads each existing .env file into the process environment.
// Variables already set are kept; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnvironment resolves credentials from the environment and lets
// them shadow file values. The shopdesk-specific variables win over the
// provider conventions (GROQ_API_KEY and so on), which only apply to the
// provider currently configured.
func (s *ConfigStore) ApplyEnvironment() {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := make(map[string]any)
	if v := os.Getenv(EnvMongoURI); v != "" {
		env["storage.mongo_uri"] = v
	}

	llmProvider := domain.AIProvider(stringValue(s.data["llm.provider"]))
	if llmProvider == "" {
		llmProvider = domain.DefaultAppSettings().LLM.Provider
	}
	if v := credential(EnvLLMAPIKey, llmProvider); v != "" {
		env["llm.api_key"] = v
	}

	embedProvider := domain.AIProvider(stringValue(s.data["embedding.provider"]))
	if embedProvider != "" {
		if v := credential(EnvEmbeddingAPIKey, embedProvider); v != "" {
			env["embedding.api_key"] = v
		}
	}

	s.env = env
}

// EnvironmentKeys returns the keys currently shadowed by the environment.
func (s *ConfigStore) EnvironmentKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.env))
	for k := range s.env {
		keys = append(keys, k)
	}
	return keys
}

func credential(primary string, provider domain.AIProvider) string {
	if v := os.Getenv(primary); v != "" {
		return v
	}
	if name, ok := providerKeyEnv[provider]; ok {
		return os.Getenv(name)
	}
	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
