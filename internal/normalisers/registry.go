package normalisers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers/docx"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers/pdf"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers/plaintext"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers/pptx"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// Registry dispatches extraction to the highest-priority normaliser
// registered for a document type.
type Registry struct {
	mu     sync.RWMutex
	byType map[domain.DocumentType][]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(ns ...driven.Normaliser) *Registry {
	r := &Registry{byType: make(map[domain.DocumentType][]driven.Normaliser)}
	for _, n := range ns {
		r.Register(n)
	}
	return r
}

// Default returns a registry with the PDF, PPTX, DOCX and plain text
// normalisers.
func Default() *Registry {
	return NewRegistry(pdf.New(), pptx.New(), docx.New(), plaintext.New())
}

// Register adds a normaliser for each of its supported types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range n.SupportedTypes() {
		list := append(r.byType[t], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byType[t] = list
	}
}

// SupportedTypes returns every type with at least one normaliser.
func (r *Registry) SupportedTypes() []domain.DocumentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.DocumentType, 0, len(r.byType))
	for _, t := range domain.AllDocumentTypes() {
		if len(r.byType[t]) > 0 {
			types = append(types, t)
		}
	}
	return types
}

// Extract selects a normaliser by the lower-cased extension and runs it.
func (r *Registry) Extract(ctx context.Context, content []byte, ext string) (*domain.ExtractedText, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	t := domain.DocumentType(strings.TrimPrefix(ext, "."))

	r.mu.RLock()
	list := r.byType[t]
	r.mu.RUnlock()
	if len(list) == 0 {
		return nil, &domain.UnsupportedFormatError{Ext: ext}
	}

	return list[0].Normalise(ctx, &domain.RawDocument{Type: t, Content: content})
}
