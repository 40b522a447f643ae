package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func TestConfigValidator_Unconfigured(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateEmbedding(nil))
	assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "x"}))
	assert.NoError(t, validator.ValidateLLM(nil))
	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderGroq}))
}

func TestConfigValidator_Reachability(t *testing.T) {
	validator := NewConfigValidator()
	srv := okServer(t)

	assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
	assert.Error(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: deadURL(t),
	}))
}
