// Package ai provides factory functions for creating AI service adapters
// and the vector index that depends on them.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/embedding/openai"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/gemini"
	anthropicllm "github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/llm/ollama"
	openaillm "github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/llm/openai"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/ratelimit"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/chroma"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/memory"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/sqlite"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Model            driven.GenerativeModel
	VectorIndex      driven.VectorIndex
	Warnings         []string // Non-fatal issues that caused fallback.
	FellBack         bool     // True if embeddings fell back to the local hashing model.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.VectorIndex != nil {
		r.VectorIndex.Close()
	}
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.Model != nil {
		r.Model.Close()
	}
}

// Initialise builds the embedder, vector index and generative model for
// settings. A cloud embedding provider without a key falls back to the
// local hashing embedder with a warning. A missing generative model is
// also a warning: services that need it report domain.ErrLLMUnavailable.
// ephemeral forces the in-memory index.
func Initialise(ctx context.Context, settings *domain.AppSettings, ephemeral bool) (*InitResult, error) {
	result := &InitResult{}

	embSettings := settings.Embedding
	if !embSettings.IsConfigured() {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"embedding provider %q is not configured, using local hashing embeddings", embSettings.Provider))
		embSettings = domain.EmbeddingSettings{
			Provider: domain.AIProviderHashing,
			Model:    domain.DefaultEmbeddingModels()[domain.AIProviderHashing],
		}
		result.FellBack = true
	}

	embedder, err := CreateEmbeddingService(ctx, &embSettings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	result.EmbeddingService = embedder

	index := settings.Index
	if ephemeral {
		index.Backend = domain.IndexBackendMemory
	}
	vi, err := CreateVectorIndex(ctx, index, settings.Storage.VectorDBDir, embSettings, embedder)
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorIndex = vi

	model, err := CreateGenerativeModel(ctx, &settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
	case model == nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"LLM provider %q is not configured, ask and generation are disabled", settings.LLM.Provider))
	default:
		result.Model = model
	}

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'studybuddy settings embedding' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check 'studybuddy config show'",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateGenerativeModel creates a generative model and validates connectivity.
func CreateAndValidateGenerativeModel(settings *domain.LLMSettings) (driven.GenerativeModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	model, err := CreateGenerativeModel(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w. Run 'studybuddy settings llm' to fix", err)
	}

	if err := model.Ping(ctx); err != nil {
		model.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check 'studybuddy config show'",
			domain.ErrLLMUnavailable, err)
	}

	return model, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(settings)
	if svc != nil {
		svc.Close()
	}
	return err
}

// ValidateLLMConfig validates an LLM configuration by creating a model and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	model, err := CreateAndValidateGenerativeModel(settings)
	if model != nil {
		model.Close()
	}
	return err
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, errors.New("anthropic does not support embeddings, use gemini, openai, ollama or hashing")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return gemini.NewEmbeddingService(ctx, gemini.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		}), nil

	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(domain.EmbeddingDimensions()[settings.Model]), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerativeModel creates the configured generative model wrapped in
// a rate limiter. Returns nil if the provider is not configured.
func CreateGenerativeModel(ctx context.Context, settings *domain.LLMSettings) (driven.GenerativeModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		model driven.GenerativeModel
		err   error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		model, err = gemini.NewGenerativeModel(ctx, gemini.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			ImageModel: settings.ImageModel,
		})

	case domain.AIProviderOpenAI:
		model, err = openaillm.NewModel(openaillm.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			ImageModel: settings.ImageModel,
		})

	case domain.AIProviderAnthropic:
		model, err = anthropicllm.NewModel(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		model = ollamallm.NewModel(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrLLMUnavailable, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.NewModel(model, settings.RequestsPerMinute), nil
}

// CreateVectorIndex opens the configured index backend. The SQLite and
// memory backends embed with embedder; Chroma builds its own embedding
// function from embSettings.
func CreateVectorIndex(
	ctx context.Context,
	index domain.IndexSettings,
	dataDir string,
	embSettings domain.EmbeddingSettings,
	embedder driven.EmbeddingService,
) (driven.VectorIndex, error) {
	switch index.Backend {
	case domain.IndexBackendSQLite, "":
		store, err := sqlite.NewStore(dataDir, embedder)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite index: %w", err)
		}
		return store, nil

	case domain.IndexBackendMemory:
		return memory.NewVectorIndex(embedder)

	case domain.IndexBackendChroma:
		store, err := chroma.NewStore(ctx, chroma.Config{
			BaseURL:    index.ChromaURL,
			Collection: index.Collection,
			Embedding:  embSettings,
		})
		if err != nil {
			return nil, fmt.Errorf("opening chroma index: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, index.Backend)
	}
}
