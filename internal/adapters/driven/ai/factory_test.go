package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/adapters/driven/ai/anthropic"
	"github.com/custodia-labs/themescope/internal/adapters/driven/ai/ollama"
	"github.com/custodia-labs/themescope/internal/adapters/driven/ai/openai"
	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
		wantErr  bool
	}{
		{name: "nil settings", settings: nil},
		{name: "unconfigured", settings: &domain.LLMSettings{}},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama}, wantType: &ollama.LLMService{}},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"}, wantType: &openai.LLMService{}},
		{name: "anthropic", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk"}, wantType: &anthropic.LLMService{}},
		{name: "openai without key", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI}, wantErr: true},
		{name: "unknown", settings: &domain.LLMSettings{Provider: "acme"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantType == nil {
				assert.Nil(t, svc)
				return
			}
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"})
	require.NoError(t, err)
	assert.IsType(t, &ollama.EmbeddingService{}, svc)
	assert.Equal(t, 768, svc.Dimensions())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"})
	require.NoError(t, err)
	assert.IsType(t, &openai.EmbeddingService{}, svc)

	_, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk"})
	assert.Error(t, err)

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{})
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})

	assert.Nil(t, svc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestInit_ConfiguredProviders(t *testing.T) {
	server := okServer(t)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

	result := Init(context.Background(), &settings)
	defer result.Close()

	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.LLMService)
	require.NotNil(t, result.EmbeddingService)
	assert.IsType(t, &rateLimitedLLM{}, result.LLMService)
	assert.IsType(t, &rateLimitedEmbedding{}, result.EmbeddingService)
}

func TestInit_FallsBackWithWarnings(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOpenAI}
	settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic}

	result := Init(context.Background(), &settings)

	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.EmbeddingService)
	assert.Len(t, result.Warnings, 2)
}

func TestInit_Unconfigured(t *testing.T) {
	settings := domain.DefaultAppSettings()

	result := Init(context.Background(), &settings)

	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.EmbeddingService)
	assert.Empty(t, result.Warnings)
}

type countingLLM struct {
	driven.LLMService
	calls int
}

func (c *countingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	c.calls++
	return "ok", nil
}

func TestWithLLMRateLimit(t *testing.T) {
	inner := &countingLLM{}

	assert.Same(t, driven.LLMService(inner), WithLLMRateLimit(inner, 0))
	assert.Nil(t, WithLLMRateLimit(nil, 5))

	limited := WithLLMRateLimit(inner, 20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		out, err := limited.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	}
	assert.Equal(t, 3, inner.calls)
	// Burst of one: the second and third calls wait ~50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestWithLLMRateLimit_Canceled(t *testing.T) {
	inner := &countingLLM{}
	limited := WithLLMRateLimit(inner, 0.001)
	_, err := limited.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = limited.Generate(ctx, "p", driven.GenerateOptions{})

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestConfigValidator(t *testing.T) {
	server := okServer(t)
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{}))
	assert.ErrorIs(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}), domain.ErrEmbeddingUnavailable)
}
