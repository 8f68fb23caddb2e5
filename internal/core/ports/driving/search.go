package driving

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search returns chunks ranked by descending relevance.
	// An empty index or an unmatched filter yields an empty slice, not an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// AnswerService answers questions grounded in retrieved chunks.
type AnswerService interface {
	// Ask retrieves context and asks the generative model.
	// Model failures are returned as *domain.AnswerGenerationError.
	Ask(ctx context.Context, question string, documentIDs []string) (*domain.Answer, error)
}
