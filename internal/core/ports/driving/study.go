package driving

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// VisualizationRequest describes a knowledge image to generate.
type VisualizationRequest struct {
	// Topic is what the image explains.
	Topic string

	// KnowledgeContext is optional background text, usually retrieved chunks.
	KnowledgeContext string

	// ConversationHistory is optional prior chat text.
	ConversationHistory string

	Style       domain.VisualizationStyle
	AspectRatio string
}

// VisualizationService generates study images.
// Every method returns domain.ErrNoImage when the model produced no image.
type VisualizationService interface {
	// Visualize plans the image with the text model, then renders it.
	Visualize(ctx context.Context, req VisualizationRequest) (*domain.Image, error)

	// StudyNotes renders a notes card.
	StudyNotes(ctx context.Context, title, content, aspectRatio string) (*domain.Image, error)

	// ConceptMap renders concepts arranged around a central topic.
	ConceptMap(ctx context.Context, centralTopic string, concepts []string, aspectRatio string) (*domain.Image, error)

	// FromKnowledge retrieves context for topic from the index and visualises it.
	FromKnowledge(ctx context.Context, topic string, style domain.VisualizationStyle, aspectRatio string) (*domain.Image, error)
}

// RecommendationService suggests what to study next.
type RecommendationService interface {
	// VisualizationTopics suggests topics worth turning into images.
	VisualizationTopics(ctx context.Context, documentIDs []string, history []domain.ConversationMessage) ([]domain.Topic, error)

	// ChatTopics suggests questions worth asking.
	ChatTopics(ctx context.Context, documentIDs []string, history []domain.ConversationMessage) ([]domain.Topic, error)

	// TrendingKeywords returns the top terms across the indexed chunks.
	TrendingKeywords(ctx context.Context, documentIDs []string, n int) ([]domain.Keyword, error)
}

// AnalysisService runs whole-document tasks through the generative model.
type AnalysisService interface {
	// Analyze runs task over the document's text.
	// Returns domain.ErrNotFound for an unknown document.
	Analyze(ctx context.Context, documentID string, task domain.AnalysisTask) (string, error)
}
