package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Ensure VisualizationService implements the interfaces.
var (
	_ driving.VisualizationService = (*VisualizationService)(nil)
	_ driven.PromptStoreAware      = (*VisualizationService)(nil)
)

// Limits applied to text sent to the planner and renderer.
const (
	planContextLimit    = 2000
	planHistoryLimit    = 1000
	notesContentLimit   = 1500
	conceptMapMaxTopics = 10
	knowledgeTopK       = 3
)

// VisualizationService generates study images with the generative model.
type VisualizationService struct {
	model   driven.GenerativeModel
	search  driving.SearchService
	prompts driven.PromptStore
}

// NewVisualizationService creates a new visualisation service.
// search is only needed by FromKnowledge.
func NewVisualizationService(model driven.GenerativeModel, search driving.SearchService) *VisualizationService {
	return &VisualizationService{
		model:  model,
		search: search,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *VisualizationService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Visualize plans the image with the text model, then renders it.
// A planning failure falls back to a minimal plan.
func (s *VisualizationService) Visualize(ctx context.Context, req driving.VisualizationRequest) (*domain.Image, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidInput)
	}
	aspect, err := aspectOrDefault(req.AspectRatio, domain.AspectLandscape)
	if err != nil {
		return nil, err
	}
	if s.model == nil {
		return nil, domain.ErrLLMUnavailable
	}

	style := req.Style
	if !style.IsValid() {
		style = domain.StyleEducational
	}

	logger.Section("Visualize")
	plan := s.plan(ctx, topic, req.KnowledgeContext, req.ConversationHistory)
	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptVisualRender), style.Description(), plan)

	return s.render(ctx, prompt, aspect, fmt.Sprintf("%s (%s)", topic, style))
}

// plan asks the text model what the image should contain.
func (s *VisualizationService) plan(ctx context.Context, topic, knowledge, history string) string {
	var background strings.Builder
	if k := strings.TrimSpace(knowledge); k != "" {
		background.WriteString("\nBackground knowledge:\n")
		background.WriteString(domain.Clip(k, planContextLimit))
		background.WriteString("\n")
	}
	if h := strings.TrimSpace(history); h != "" {
		background.WriteString("\nConversation so far:\n")
		background.WriteString(domain.Clip(h, planHistoryLimit))
		background.WriteString("\n")
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptVisualPlan), topic, background.String())
	plan, err := s.model.GenerateText(ctx, prompt, loadPrompt(s.prompts, driven.PromptVisualPlanSystem))
	if err != nil || strings.TrimSpace(plan) == "" {
		if err != nil {
			logger.Warn("Visual planning failed, using minimal plan: %v", err)
		}
		return fallbackPlan(topic)
	}
	logger.Debug("Visual plan: %d characters", len(plan))
	return strings.TrimSpace(plan)
}

func fallbackPlan(topic string) string {
	return fmt.Sprintf("Topic: %s\nCore concepts: derive from the topic", topic)
}

// StudyNotes renders a notes card.
func (s *VisualizationService) StudyNotes(ctx context.Context, title, content, aspectRatio string) (*domain.Image, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalidInput)
	}
	aspect, err := aspectOrDefault(aspectRatio, domain.AspectPortrait)
	if err != nil {
		return nil, err
	}
	if s.model == nil {
		return nil, domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptStudyNotes), title, domain.Clip(content, notesContentLimit))
	return s.render(ctx, prompt, aspect, "Study notes: "+title)
}

// ConceptMap renders up to ten concepts arranged around a central topic.
func (s *VisualizationService) ConceptMap(
	ctx context.Context, centralTopic string, concepts []string, aspectRatio string,
) (*domain.Image, error) {
	centralTopic = strings.TrimSpace(centralTopic)
	if centralTopic == "" {
		return nil, fmt.Errorf("%w: central topic is required", domain.ErrInvalidInput)
	}
	aspect, err := aspectOrDefault(aspectRatio, domain.AspectLandscape)
	if err != nil {
		return nil, err
	}
	if s.model == nil {
		return nil, domain.ErrLLMUnavailable
	}

	var list strings.Builder
	n := 0
	for _, c := range concepts {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if n == conceptMapMaxTopics {
			break
		}
		fmt.Fprintf(&list, "- %s\n", c)
		n++
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptConceptMap), centralTopic, strings.TrimRight(list.String(), "\n"))
	return s.render(ctx, prompt, aspect, "Concept map: "+centralTopic)
}

// FromKnowledge retrieves context for topic from the index and visualises it.
func (s *VisualizationService) FromKnowledge(
	ctx context.Context, topic string, style domain.VisualizationStyle, aspectRatio string,
) (*domain.Image, error) {
	var knowledge string
	if s.search != nil && strings.TrimSpace(topic) != "" {
		results, err := s.search.Search(ctx, topic, domain.SearchOptions{TopK: knowledgeTopK})
		if err != nil {
			return nil, fmt.Errorf("retrieve: %w", err)
		}
		texts := make([]string, len(results))
		for i, r := range results {
			texts[i] = r.Text
		}
		knowledge = strings.Join(texts, "\n\n")
		logger.Debug("Knowledge context from %d chunks", len(results))
	}

	return s.Visualize(ctx, driving.VisualizationRequest{
		Topic:            topic,
		KnowledgeContext: knowledge,
		Style:            style,
		AspectRatio:      aspectRatio,
	})
}

func (s *VisualizationService) render(ctx context.Context, prompt, aspect, description string) (*domain.Image, error) {
	data, err := s.model.GenerateImage(ctx, prompt, aspect)
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("Image model returned no image")
		return nil, domain.ErrNoImage
	}
	return &domain.Image{
		Data:        data,
		MIMEType:    http.DetectContentType(data),
		Description: description,
	}, nil
}

func aspectOrDefault(ratio, fallback string) (string, error) {
	ratio = strings.TrimSpace(ratio)
	if ratio == "" {
		return fallback, nil
	}
	if !domain.ValidAspectRatio(ratio) {
		return "", fmt.Errorf("%w: unsupported aspect ratio %q", domain.ErrInvalidInput, ratio)
	}
	return ratio, nil
}
