package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// contextSeparator divides source blocks in the answer prompt.
const contextSeparator = "\n\n---\n\n"

// AnswerService answers questions grounded in retrieved chunks.
type AnswerService struct {
	search  driving.SearchService
	model   driven.GenerativeModel
	prompts driven.PromptStore
}

// NewAnswerService creates a new answer service.
// model may be nil, in which case Ask fails with domain.ErrLLMUnavailable
// once retrieval has found something.
func NewAnswerService(search driving.SearchService, model driven.GenerativeModel) *AnswerService {
	return &AnswerService{
		search: search,
		model:  model,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Ask retrieves context and asks the generative model.
func (s *AnswerService) Ask(ctx context.Context, question string, documentIDs []string) (*domain.Answer, error) {
	logger.Section("Ask")

	results, err := s.search.Search(ctx, question, domain.SearchOptions{DocumentIDs: documentIDs})
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(results) == 0 {
		logger.Debug("No context found for %q", question)
		return &domain.Answer{Answer: domain.NoInformationAnswer, Sources: []domain.SourceReference{}}, nil
	}
	if s.model == nil {
		return nil, &domain.AnswerGenerationError{Err: domain.ErrLLMUnavailable}
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptAnswer), BuildContext(results), question)
	system := loadPrompt(s.prompts, driven.PromptGrounding)

	logger.Debug("Asking %s with %d sources", s.model.ModelName(), len(results))
	text, err := s.model.GenerateText(ctx, prompt, system)
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return nil, &domain.AnswerGenerationError{Err: err}
	}

	sources := make([]domain.SourceReference, len(results))
	for i, r := range results {
		sources[i] = domain.NewSourceReference(r)
	}
	return &domain.Answer{Answer: text, Sources: sources}, nil
}

// BuildContext renders results as numbered source blocks in rank order.
func BuildContext(results []domain.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.Filename, r.Text)
	}
	return strings.Join(blocks, contextSeparator)
}
