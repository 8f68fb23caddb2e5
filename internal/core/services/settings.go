package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyChunkSize     = "rag.chunk_size"
	KeyChunkOverlap  = "rag.chunk_overlap"
	KeyTopK          = "rag.top_k"
	KeyUploadDir     = "storage.upload_dir"
	KeyVectorDBDir   = "storage.vectordb_dir"
	KeyIndexBackend  = "index.backend"
	KeyChromaURL     = "index.chroma_url"
	KeyCollection    = "index.collection"
	KeyEmbedProvider = "embedding.provider"
	KeyEmbedModel    = "embedding.model"
	KeyEmbedBaseURL  = "embedding.base_url"
	KeyEmbedAPIKey   = "embedding.api_key"
	KeyLLMProvider   = "llm.provider"
	KeyLLMModel      = "llm.model"
	KeyLLMImageModel = "llm.image_model"
	KeyLLMBaseURL    = "llm.base_url"
	KeyLLMAPIKey     = "llm.api_key"
	KeyLLMRateLimit  = "llm.requests_per_minute"
	KeyServerAddr    = "server.addr"
	KeyServerCORS    = "server.cors_origins"
)

const defaultOllamaURL = "http://localhost:11434"

// Environment overrides.
//
//nolint:gosec // G101: variable names, not credentials.
const (
	envChunkSize       = "STUDYBUDDY_CHUNK_SIZE"
	envChunkOverlap    = "STUDYBUDDY_CHUNK_OVERLAP"
	envTopK            = "STUDYBUDDY_TOP_K"
	envUploadDir       = "STUDYBUDDY_UPLOAD_DIR"
	envVectorDBDir     = "STUDYBUDDY_VECTORDB_DIR"
	envCORSOrigins     = "STUDYBUDDY_CORS_ORIGINS"
	envGoogleAPIKey    = "GOOGLE_API_KEY"
	envOpenAIAPIKey    = "OPENAI_API_KEY"
	envAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindList
)

// settingKeys lists every key SetValue accepts.
var settingKeys = map[string]keyKind{
	KeyChunkSize:     kindInt,
	KeyChunkOverlap:  kindInt,
	KeyTopK:          kindInt,
	KeyUploadDir:     kindString,
	KeyVectorDBDir:   kindString,
	KeyIndexBackend:  kindString,
	KeyChromaURL:     kindString,
	KeyCollection:    kindString,
	KeyEmbedProvider: kindString,
	KeyEmbedModel:    kindString,
	KeyEmbedBaseURL:  kindString,
	KeyEmbedAPIKey:   kindString,
	KeyLLMProvider:   kindString,
	KeyLLMModel:      kindString,
	KeyLLMImageModel: kindString,
	KeyLLMBaseURL:    kindString,
	KeyLLMAPIKey:     kindString,
	KeyLLMRateLimit:  kindInt,
	KeyServerAddr:    kindString,
	KeyServerCORS:    kindList,
}

// SettingKeys returns every configurable key.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
// Values come from the config store, then environment overrides.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings, with environment
// overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := s.stored()
	s.applyEnv(settings)
	return settings, nil
}

// stored reads settings from the config store only.
func (s *SettingsService) stored() *domain.AppSettings {
	defaults := domain.DefaultAppSettings()

	return &domain.AppSettings{
		RAG: domain.RAGSettings{
			ChunkSize:    s.getInt(KeyChunkSize, defaults.RAG.ChunkSize),
			ChunkOverlap: s.getIntAllowZero(KeyChunkOverlap, defaults.RAG.ChunkOverlap),
			TopK:         s.getInt(KeyTopK, defaults.RAG.TopK),
		},
		Storage: domain.StorageSettings{
			UploadDir:   s.getString(KeyUploadDir, defaults.Storage.UploadDir),
			VectorDBDir: s.getString(KeyVectorDBDir, defaults.Storage.VectorDBDir),
		},
		Index: domain.IndexSettings{
			Backend:    s.getBackend(defaults.Index.Backend),
			ChromaURL:  s.getString(KeyChromaURL, defaults.Index.ChromaURL),
			Collection: s.getString(KeyCollection, defaults.Index.Collection),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(KeyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(KeyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(KeyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(KeyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(KeyLLMModel, defaults.LLM.Model),
			ImageModel:        s.getStringAllowEmpty(KeyLLMImageModel, defaults.LLM.ImageModel),
			BaseURL:           s.configStore.GetString(KeyLLMBaseURL),
			APIKey:            s.configStore.GetString(KeyLLMAPIKey),
			RequestsPerMinute: s.getIntAllowZero(KeyLLMRateLimit, defaults.LLM.RequestsPerMinute),
		},
		Server: domain.ServerSettings{
			Addr:        s.getString(KeyServerAddr, defaults.Server.Addr),
			CORSOrigins: s.getStringSlice(KeyServerCORS, defaults.Server.CORSOrigins),
		},
	}
}

// applyEnv overlays environment variables. Set variables win over the
// config file.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if n, ok := s.envInt(envChunkSize); ok {
		settings.RAG.ChunkSize = n
	}
	if n, ok := s.envInt(envChunkOverlap); ok {
		settings.RAG.ChunkOverlap = n
	}
	if n, ok := s.envInt(envTopK); ok {
		settings.RAG.TopK = n
	}
	if v := s.getenv(envUploadDir); v != "" {
		settings.Storage.UploadDir = v
	}
	if v := s.getenv(envVectorDBDir); v != "" {
		settings.Storage.VectorDBDir = v
	}
	if v := s.getenv(envCORSOrigins); v != "" {
		settings.Server.CORSOrigins = splitList(v)
	}
	if key := s.apiKeyFromEnv(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := s.apiKeyFromEnv(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
}

func (s *SettingsService) apiKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGemini:
		return s.getenv(envGoogleAPIKey)
	case domain.AIProviderOpenAI:
		return s.getenv(envOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(envAnthropicAPIKey)
	default:
		return ""
	}
}

func (s *SettingsService) envInt(name string) (int, bool) {
	v := strings.TrimSpace(s.getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Save persists application settings. Empty API keys are not written so
// that keys held only in the environment never reach the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{KeyChunkSize, settings.RAG.ChunkSize},
		{KeyChunkOverlap, settings.RAG.ChunkOverlap},
		{KeyTopK, settings.RAG.TopK},
		{KeyUploadDir, settings.Storage.UploadDir},
		{KeyVectorDBDir, settings.Storage.VectorDBDir},
		{KeyIndexBackend, settings.Index.Backend.String()},
		{KeyChromaURL, settings.Index.ChromaURL},
		{KeyCollection, settings.Index.Collection},
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMImageModel, settings.LLM.ImageModel},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMRateLimit, settings.LLM.RequestsPerMinute},
		{KeyServerAddr, settings.Server.Addr},
		{KeyServerCORS, settings.Server.CORSOrigins},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if key := settings.Embedding.APIKey; key != "" && key != s.apiKeyFromEnv(settings.Embedding.Provider) {
		if err := s.configStore.Set(KeyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyEmbedAPIKey, err)
		}
	}
	if key := settings.LLM.APIKey; key != "" && key != s.apiKeyFromEnv(settings.LLM.Provider) {
		if err := s.configStore.Set(KeyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", KeyLLMAPIKey, err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.apiKeyFromEnv(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	if provider == domain.AIProviderOllama {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	} else {
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey
	return s.Save(settings)
}

// SetLLMProvider configures the generative model provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	valid := false
	for _, p := range domain.AllLLMProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" && s.apiKeyFromEnv(provider) == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings := s.stored()
	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}
	settings.LLM.ImageModel = domain.DefaultImageModels()[provider]

	if provider == domain.AIProviderOllama {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey
	return s.Save(settings)
}

// SetValue stores a single dotted configuration key. String values are
// converted to the key's type.
func (s *SettingsService) SetValue(key string, value any) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	switch kind {
	case kindInt:
		if str, isStr := value.(string); isStr {
			n, err := strconv.Atoi(strings.TrimSpace(str))
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
			}
			value = n
		}
	case kindList:
		if str, isStr := value.(string); isStr {
			value = splitList(str)
		}
	}

	switch key {
	case KeyIndexBackend:
		if b := domain.IndexBackend(fmt.Sprint(value)); !b.IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, b)
		}
	case KeyEmbedProvider, KeyLLMProvider:
		if p := domain.AIProvider(fmt.Sprint(value)); !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, p)
		}
	}

	return s.configStore.Set(key, value)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.RAG.Validate(); err != nil {
		return fmt.Errorf("chunk size %d, overlap %d and top_k %d: %w",
			settings.RAG.ChunkSize, settings.RAG.ChunkOverlap, settings.RAG.TopK, err)
	}
	if !settings.Index.Backend.IsValid() {
		return fmt.Errorf("%w: index backend %q", domain.ErrInvalidInput, settings.Index.Backend)
	}
	if settings.Index.Backend == domain.IndexBackendChroma &&
		settings.Embedding.Provider != domain.AIProviderGemini &&
		settings.Embedding.Provider != domain.AIProviderOpenAI {
		return fmt.Errorf("%w: the chroma backend needs gemini or openai embeddings", domain.ErrInvalidInput)
	}
	if settings.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests_per_minute must not be negative", domain.ErrInvalidInput)
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

// getStringAllowEmpty distinguishes a stored empty string from a missing key.
func (s *SettingsService) getStringAllowEmpty(key, defaultVal string) string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero distinguishes a stored zero from a missing key.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
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

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	val := s.configStore.GetString(KeyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.IndexBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
