package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// maxBatch is the API's limit on requests per batchEmbedContents call.
const maxBatch = 100

// EmbeddingService generates embeddings with a Gemini embedding model.
type EmbeddingService struct {
	client     *genai.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	dimensions, ok := domain.EmbeddingDimensions()[cfg.Model]
	if !ok {
		dimensions = 768
	}

	return &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// embedder returns a model handle tagged with the retrieval task type.
func (s *EmbeddingService) embedder(task genai.TaskType) *genai.EmbeddingModel {
	em := s.client.EmbeddingModel(modelPath(s.model))
	em.TaskType = task
	return em
}

// Embed embeds a search query.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder(genai.TaskTypeRetrievalQuery).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, wrapError("embed", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, wrapError("embed", fmt.Errorf("no embedding returned"))
	}
	return resp.Embedding.Values, nil
}

// EmbedBatch embeds documents for storage, in requests of at most maxBatch texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := s.embedder(genai.TaskTypeRetrievalDocument)
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, wrapError("embed", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, wrapError("embed", fmt.Errorf("got %d embeddings for %d inputs",
				len(resp.Embeddings), end-start))
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				return nil, wrapError("embed", fmt.Errorf("no embedding returned"))
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model description, which validates the key without inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.EmbeddingModel(modelPath(s.model)).Info(ctx); err != nil {
		return wrapError("ping", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}
