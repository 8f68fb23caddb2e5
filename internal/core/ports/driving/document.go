package driving

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// DocumentService manages uploaded study documents.
type DocumentService interface {
	// Ingest stores, extracts, chunks and indexes an upload.
	// Unknown extensions fail with *domain.UnsupportedFormatError before
	// anything is written. Other failures are *domain.IngestionError.
	Ingest(ctx context.Context, content []byte, filename string) (*domain.Document, error)

	// List returns every known document, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound for an unknown id.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Delete removes a document and its chunks.
	// Returns false with a nil error when the id is unknown.
	Delete(ctx context.Context, documentID string) (bool, error)

	// Chunks returns the stored chunks of a document in index order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Resync rebuilds the registry from the vector index.
	Resync(ctx context.Context) error
}
