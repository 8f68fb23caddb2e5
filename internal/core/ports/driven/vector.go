package driven

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// VectorIndex stores chunks with their embeddings and metadata and
// answers similarity queries. It is the only durable store of chunk
// state; the document registry is rebuilt from Get.
type VectorIndex interface {
	// Add embeds and stores chunks. ids, texts and metadatas are parallel.
	// Adding an id that already exists returns domain.ErrAlreadyExists
	// and nothing from the batch is stored.
	Add(ctx context.Context, ids []string, texts []string, metadatas []map[string]any) error

	// Query returns up to k chunks nearest to text, ordered by ascending
	// distance, restricted to chunks whose metadata matches filter.
	Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.VectorHit, error)

	// Get returns every stored chunk matching filter.
	Get(ctx context.Context, filter domain.Filter) ([]domain.VectorRecord, error)

	// Delete removes chunks by id. Unknown ids are ignored.
	Delete(ctx context.Context, ids []string) error

	// DeleteWhere removes every chunk matching filter.
	// An empty filter is rejected with domain.ErrInvalidInput.
	DeleteWhere(ctx context.Context, filter domain.Filter) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
