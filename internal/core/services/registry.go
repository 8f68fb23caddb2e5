package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Registry is the in-memory view of known documents.
// The vector index is the source of truth; Rebuild re-derives the view
// from chunk metadata.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]domain.Document)}
}

// Rebuild replaces the registry contents with documents derived from
// every chunk in index. Index errors are logged, leave the registry
// empty and are returned for callers that want to surface them.
func (r *Registry) Rebuild(ctx context.Context, index driven.VectorIndex) error {
	docs := make(map[string]domain.Document)
	defer func() {
		r.mu.Lock()
		r.docs = docs
		r.mu.Unlock()
	}()

	if index == nil {
		logger.Warn("Registry rebuild skipped: no vector index")
		return domain.ErrVectorIndexUnavailable
	}

	records, err := index.Get(ctx, nil)
	if err != nil {
		logger.Warn("Registry rebuild failed: %v", err)
		return fmt.Errorf("rebuild registry: %w", err)
	}

	for _, rec := range records {
		id := domain.MetaString(rec.Metadata[domain.MetaDocumentID])
		if id == "" {
			continue
		}
		doc, ok := docs[id]
		if !ok {
			doc = domain.Document{
				ID:        id,
				Filename:  domain.MetaString(rec.Metadata[domain.MetaFilename]),
				FileType:  domain.DocumentType(domain.MetaString(rec.Metadata[domain.MetaFileType])),
				Status:    domain.DocumentStatusCompleted,
				CreatedAt: domain.MetaTime(rec.Metadata[domain.MetaCreatedAt], time.Time{}),
			}
		}
		doc.ChunkCount++
		docs[id] = doc
	}

	logger.Debug("Registry rebuilt: %d documents from %d chunks", len(docs), len(records))
	return nil
}

// Register inserts or replaces a document.
func (r *Registry) Register(doc domain.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
}

// Get returns a copy of the document with id.
func (r *Registry) Get(id string) (domain.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// List returns all documents, newest first.
func (r *Registry) List() []domain.Document {
	r.mu.RLock()
	docs := make([]domain.Document, 0, len(r.docs))
	for _, d := range r.docs {
		docs = append(docs, d)
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs
}

// Remove deletes the document with id and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.docs[id]
	delete(r.docs, id)
	return ok
}

// Len returns the number of documents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
