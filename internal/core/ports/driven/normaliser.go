package driven

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// Normaliser extracts plain text from one or more document formats.
type Normaliser interface {
	// SupportedTypes returns the document types this normaliser handles.
	SupportedTypes() []domain.DocumentType

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the text of a raw upload.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.ExtractedText, error)
}

// TextExtractor converts raw document bytes of a declared type to plain text.
type TextExtractor interface {
	// Extract returns the text and structural metadata of content.
	// ext is the declared file extension including the dot.
	// Unknown extensions fail with *domain.UnsupportedFormatError.
	Extract(ctx context.Context, content []byte, ext string) (*domain.ExtractedText, error)

	// SupportedTypes returns every type an extractor is registered for.
	SupportedTypes() []domain.DocumentType
}
