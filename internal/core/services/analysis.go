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

// Ensure AnalysisService implements the interfaces.
var (
	_ driving.AnalysisService = (*AnalysisService)(nil)
	_ driven.PromptStoreAware = (*AnalysisService)(nil)
)

// analysisContentLimit caps the document text sent to the model.
const analysisContentLimit = 8000

// AnalysisService runs whole-document tasks through the generative model.
type AnalysisService struct {
	documents driving.DocumentService
	model     driven.GenerativeModel
	prompts   driven.PromptStore
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(documents driving.DocumentService, model driven.GenerativeModel) *AnalysisService {
	return &AnalysisService{
		documents: documents,
		model:     model,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnalysisService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Analyze runs task over the document's chunk texts in index order.
// Unknown tasks summarise.
func (s *AnalysisService) Analyze(ctx context.Context, documentID string, task domain.AnalysisTask) (string, error) {
	chunks, err := s.documents.Chunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	if s.model == nil {
		return "", domain.ErrLLMUnavailable
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	content := domain.Clip(strings.Join(texts, "\n\n"), analysisContentLimit)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: document %s has no text", domain.ErrInvalidInput, documentID)
	}

	if !task.IsValid() {
		logger.Debug("Unknown analysis task %q, summarising", task)
		task = domain.TaskSummarize
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, analysisPrompt(task)), content)
	logger.Debug("Analyze %s: %s over %d chunks", documentID, task, len(chunks))

	result, err := s.model.GenerateText(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("analyze %s: %w", task, err)
	}
	return result, nil
}

func analysisPrompt(task domain.AnalysisTask) string {
	switch task {
	case domain.TaskExtractKeyPoints:
		return driven.PromptKeyPoints
	case domain.TaskGenerateQuestions:
		return driven.PromptQuestions
	default:
		return driven.PromptSummarize
	}
}
