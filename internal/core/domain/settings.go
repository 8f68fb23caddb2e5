package domain

const unknownDescription = "Unknown"

// Defaults for the retrieval pipeline.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 5
	DefaultUploadDir    = "data/uploads"
	DefaultVectorDBDir  = "data/vectordb"
	DefaultCollection   = "study_documents"
	DefaultChromaURL    = "http://localhost:8000"
	DefaultServerAddr   = ":8000"

	// DefaultRequestsPerMinute throttles calls to remote model providers.
	DefaultRequestsPerMinute = 60
)

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashing is the local feature-hashing embedder.
	// It needs no network access and only serves embeddings.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashing:
		return "Feature hashing (local, offline)"
	default:
		return unknownDescription
	}
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendSQLite stores vectors in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendChroma uses a Chroma server.
	IndexBackendChroma IndexBackend = "chroma"

	// IndexBackendMemory keeps vectors in process memory only.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendSQLite, IndexBackendChroma, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// IsDurable reports whether data survives a process restart.
func (b IndexBackend) IsDurable() bool {
	return b == IndexBackendSQLite || b == IndexBackendChroma
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// RAGSettings holds the chunking and retrieval parameters.
type RAGSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the default number of search results.
	TopK int
}

// Validate checks the chunking parameters.
func (r RAGSettings) Validate() error {
	if r.ChunkSize <= 0 || r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return ErrInvalidInput
	}
	if r.TopK <= 0 {
		return ErrInvalidInput
	}
	return nil
}

// StorageSettings holds on-disk locations.
type StorageSettings struct {
	// UploadDir receives uploaded files as {id}{ext}.
	UploadDir string

	// VectorDBDir holds the vector index database.
	VectorDBDir string
}

// IndexSettings selects and configures the vector index.
type IndexSettings struct {
	// Backend is the index implementation.
	Backend IndexBackend

	// ChromaURL is the Chroma server base URL.
	ChromaURL string

	// Collection is the collection name used by the Chroma backend.
	Collection string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generative model configuration.
type LLMSettings struct {
	// Provider is the generative service provider.
	Provider AIProvider

	// Model is the text model name.
	Model string

	// ImageModel is the image model name. Empty disables image output.
	ImageModel string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// RequestsPerMinute throttles calls to the provider. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	RAG       RAGSettings
	Storage   StorageSettings
	Index     IndexSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Cloud providers still need an API key before they are usable.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		RAG: RAGSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
			TopK:         DefaultTopK,
		},
		Storage: StorageSettings{
			UploadDir:   DefaultUploadDir,
			VectorDBDir: DefaultVectorDBDir,
		},
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			ChromaURL:  DefaultChromaURL,
			Collection: DefaultCollection,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultEmbeddingModels()[AIProviderGemini],
		},
		LLM: LLMSettings{
			Provider:          AIProviderGemini,
			Model:             DefaultLLMModels()[AIProviderGemini],
			ImageModel:        DefaultImageModels()[AIProviderGemini],
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
			CORSOrigins: []string{
				"http://localhost:5173",
				"http://localhost:5174",
				"http://localhost:3000",
			},
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderHashing,
	}
}

// AllLLMProviders returns providers that support text generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:  "text-embedding-004",
		AIProviderOllama:  "nomic-embed-text",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderHashing: "hashing-256",
	}
}

// DefaultLLMModels returns default text models for each provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-3-flash-preview",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultImageModels returns default image models for providers that
// can produce images.
func DefaultImageModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "gemini-3-pro-image-preview",
		AIProviderOpenAI: "gpt-image-1",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini
		"text-embedding-004":   768,
		"gemini-embedding-001": 3072,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Local
		"hashing-256": 256,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns a pipeline running the chunker with the
// given RAG settings.
func PipelineConfigFor(rag RAGSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": rag.ChunkSize,
				"overlap":    rag.ChunkOverlap,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().RAG)
}
