// Package ai builds the LLM and embedding adapters named in settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/shopdesk/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/shopdesk/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/shopdesk/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/shopdesk/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/shopdesk/internal/core/domain"
	"github.com/custodia-labs/shopdesk/internal/core/ports/driven"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult holds the AI services built from settings.
type InitResult struct {
	LLMService       driven.LLMService
	EmbeddingService driven.EmbeddingService

	// Warnings are non-fatal problems that caused a fallback.
	Warnings []string

	// FellBack is true when embeddings were configured but unusable, so
	// the index ranks lexically.
	FellBack bool
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Init builds the LLM and, when configured, the embedding service.
// A missing or broken LLM is an error because every answer path that
// generates needs it; embedding problems degrade to lexical search.
// With ping set, both services are checked for reachability.
func Init(ctx context.Context, settings domain.AppSettings, ping bool) (*InitResult, error) {
	result := &InitResult{}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: %s needs an API key", domain.ErrLLMUnavailable, settings.LLM.Provider)
	}
	if ping {
		if err := pingService(ctx, llm.Ping); err != nil {
			_ = llm.Close()
			return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
		}
	}
	result.LLMService = llm

	if settings.Embedding.Provider == "" {
		return result, nil
	}

	embed, err := CreateEmbeddingService(&settings.Embedding)
	if err == nil && embed == nil {
		err = fmt.Errorf("%s needs an API key", settings.Embedding.Provider)
	}
	if err == nil && ping {
		if err = pingService(ctx, embed.Ping); err != nil {
			_ = embed.Close()
		}
	}
	if err != nil {
		warning := fmt.Sprintf("embeddings disabled, using lexical search: %v", err)
		logger.Warn("%s", warning)
		result.Warnings = append(result.Warnings, warning)
		result.FellBack = true
		return result, nil
	}
	result.EmbeddingService = embed
	return result, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
// Unconfigured settings are valid.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return pingService(context.Background(), svc.Ping)
}

// ValidateLLMConfig creates an LLM service and pings it.
// Unconfigured settings are valid.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return pingService(context.Background(), svc.Ping)
}

// CreateEmbeddingService returns nil when the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultBaseURLs()[settings.Provider]
	}
	model := settings.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Provider]
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{BaseURL: baseURL, Model: model}), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		})
	default:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)
	}
}

// CreateLLMService returns nil when the provider is not configured.
// Groq is served by the OpenAI-compatible adapter.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultBaseURLs()[settings.Provider]
	}
	model := settings.Model
	if model == "" {
		model = domain.DefaultLLMModels()[settings.Provider]
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: baseURL, Model: model}), nil
	case domain.AIProviderOpenAI, domain.AIProviderGroq:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			Name:    settings.Provider.String(),
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func pingService(ctx context.Context, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return ping(ctx)
}
