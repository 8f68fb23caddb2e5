package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type entry struct {
	id       string
	text     string
	metadata map[string]any
	vector   search.Float32s
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Contents are lost when the process exits.
type VectorIndex struct {
	mu       sync.RWMutex
	embedder driven.EmbeddingService
	entries  []entry
	byID     map[string]int
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex(embedder driven.EmbeddingService) (*VectorIndex, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return &VectorIndex{
		embedder: embedder,
		byID:     make(map[string]int),
	}, nil
}

// Add embeds and stores chunks. The batch is all-or-nothing.
func (v *VectorIndex) Add(ctx context.Context, ids, texts []string, metadatas []map[string]any) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: ids, texts and metadatas differ in length", domain.ErrInvalidInput)
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := v.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := v.byID[id]; ok {
			return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: chunk %s repeated in batch", domain.ErrAlreadyExists, id)
		}
		seen[id] = struct{}{}
	}

	for i, id := range ids {
		v.byID[id] = len(v.entries)
		v.entries = append(v.entries, entry{
			id:       id,
			text:     texts[i],
			metadata: maps.Clone(metadatas[i]),
			vector:   vectors[i],
		})
	}
	return nil
}

// Query returns the k nearest chunks by squared L2 distance.
func (v *VectorIndex) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	query, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	q := search.Float32s(query)

	v.mu.RLock()
	defer v.mu.RUnlock()

	var hits []domain.VectorHit
	for _, e := range v.entries {
		if !filter.Matches(e.metadata) {
			continue
		}
		if len(e.vector) != len(q) {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrInvalidInput, e.id, len(e.vector), len(q))
		}
		d := float64(q.EuclideanDistance(e.vector))
		hits = append(hits, domain.VectorHit{
			ID:       e.id,
			Text:     e.text,
			Metadata: maps.Clone(e.metadata),
			Distance: d * d,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Get returns every chunk matching filter in insertion order.
func (v *VectorIndex) Get(_ context.Context, filter domain.Filter) ([]domain.VectorRecord, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var records []domain.VectorRecord
	for _, e := range v.entries {
		if filter.Matches(e.metadata) {
			records = append(records, domain.VectorRecord{
				ID:       e.id,
				Text:     e.text,
				Metadata: maps.Clone(e.metadata),
			})
		}
	}
	return records, nil
}

// Delete removes chunks by id.
func (v *VectorIndex) Delete(_ context.Context, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.removeLocked(func(e entry) bool {
		_, ok := drop[e.id]
		return ok
	})
	return nil
}

// DeleteWhere removes every chunk matching a non-empty filter.
func (v *VectorIndex) DeleteWhere(_ context.Context, filter domain.Filter) error {
	if len(filter) == 0 {
		return fmt.Errorf("%w: refusing to delete without a filter", domain.ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.removeLocked(func(e entry) bool {
		return filter.Matches(e.metadata)
	})
	return nil
}

// Count returns the number of stored chunks.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries), nil
}

// Close is a no-op for the in-memory index.
func (v *VectorIndex) Close() error {
	return nil
}

// removeLocked drops matching entries and rebuilds the id map.
// Caller must hold the write lock.
func (v *VectorIndex) removeLocked(match func(entry) bool) {
	kept := v.entries[:0]
	for _, e := range v.entries {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	clear(v.entries[len(kept):])
	v.entries = kept

	v.byID = make(map[string]int, len(kept))
	for i, e := range kept {
		v.byID[e.id] = i
	}
}
