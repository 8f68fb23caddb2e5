package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Ensure RecommendationService implements the interfaces.
var (
	_ driving.RecommendationService = (*RecommendationService)(nil)
	_ driven.PromptStoreAware       = (*RecommendationService)(nil)
)

// Recommendation limits.
const (
	recommendMaxDocuments   = 3
	visualTopicLimit        = 5
	chatTopicLimit          = 4
	visualSampleQuery       = "main content overview"
	visualSampleTopK        = 2
	visualSampleLimit       = 500
	visualHistoryMessages   = 10
	chatSampleQuery         = "summary"
	chatSampleTopK          = 1
	chatSampleLimit         = 800
	chatHistoryMessages     = 5
	recommendKeywordHints   = 10
	fallbackTitleLimit      = 15
	defaultTrendingKeywords = 10
)

// RecommendationService suggests visualisation topics and chat questions
// from the uploaded documents and the recent conversation.
type RecommendationService struct {
	registry *Registry
	search   driving.SearchService
	index    driven.VectorIndex
	model    driven.GenerativeModel
	keywords *KeywordExtractor
	prompts  driven.PromptStore
}

// NewRecommendationService creates a new recommendation service.
// Without a model every call returns the fallback topics.
func NewRecommendationService(
	registry *Registry,
	search driving.SearchService,
	index driven.VectorIndex,
	model driven.GenerativeModel,
) *RecommendationService {
	return &RecommendationService{
		registry: registry,
		search:   search,
		index:    index,
		model:    model,
		keywords: NewKeywordExtractor(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *RecommendationService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// VisualizationTopics suggests topics worth turning into images.
func (s *RecommendationService) VisualizationTopics(
	ctx context.Context, documentIDs []string, history []domain.ConversationMessage,
) ([]domain.Topic, error) {
	docs := s.documents(documentIDs)
	if len(docs) == 0 {
		return []domain.Topic{{
			Type:        "overview",
			Title:       "Please upload study materials first",
			Description: "Upload documents to get personalised recommendations",
		}}, nil
	}

	var samples []string
	var texts []string
	for _, doc := range docs {
		results, err := s.search.Search(ctx, visualSampleQuery, domain.SearchOptions{
			TopK:        visualSampleTopK,
			DocumentIDs: []string{doc.ID},
		})
		if err != nil {
			logger.Warn("Sampling %s failed: %v", doc.Filename, err)
			continue
		}
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = domain.Clip(r.Text, visualSampleLimit)
		}
		texts = append(texts, parts...)
		samples = append(samples, fmt.Sprintf("### %s\n%s", doc.Filename, strings.Join(parts, "\n")))
	}

	hints := s.keywords.TrendingTopics(texts, recommendKeywordHints)
	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptRecommendVisual),
		strings.Join(samples, "\n\n"),
		bulletList(domain.RecentUserMessages(history, visualHistoryMessages)),
		orNone(strings.Join(hints, ", ")),
	)

	topics, err := s.generateTopics(ctx, prompt, "concept", "Untitled topic", visualTopicLimit)
	if err != nil {
		logger.Warn("Visualisation recommendations failed, using fallback: %v", err)
		return visualFallback(docs), nil
	}
	return topics, nil
}

// ChatTopics suggests questions worth asking.
func (s *RecommendationService) ChatTopics(
	ctx context.Context, documentIDs []string, history []domain.ConversationMessage,
) ([]domain.Topic, error) {
	docs := s.documents(documentIDs)
	if len(docs) == 0 {
		return []domain.Topic{{
			Type:        "summary",
			Title:       "Please upload documents first",
			Description: "Upload study materials to start asking questions",
		}}, nil
	}

	var samples []string
	for _, doc := range docs {
		sample := "Document: " + doc.Filename
		results, err := s.search.Search(ctx, chatSampleQuery, domain.SearchOptions{
			TopK:        chatSampleTopK,
			DocumentIDs: []string{doc.ID},
		})
		if err != nil {
			logger.Warn("Sampling %s failed: %v", doc.Filename, err)
		} else if len(results) > 0 {
			sample += "\nContent: " + domain.Clip(results[0].Text, chatSampleLimit)
		}
		samples = append(samples, sample)
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptRecommendChat),
		strings.Join(samples, "\n\n"),
		bulletList(domain.RecentUserMessages(history, chatHistoryMessages)),
	)

	topics, err := s.generateTopics(ctx, prompt, "summary", "Suggested question", chatTopicLimit)
	if err != nil {
		logger.Warn("Chat recommendations failed, using fallback: %v", err)
		return chatFallback(), nil
	}
	return topics, nil
}

// TrendingKeywords returns the top terms across the indexed chunks.
func (s *RecommendationService) TrendingKeywords(ctx context.Context, documentIDs []string, n int) ([]domain.Keyword, error) {
	if n <= 0 {
		n = defaultTrendingKeywords
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	records, err := s.index.Get(ctx, domain.DocumentFilter(documentIDs...))
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	keywords := s.keywords.Keywords(texts, n)
	if keywords == nil {
		keywords = []domain.Keyword{}
	}
	return keywords, nil
}

// documents returns up to three documents, restricted to ids when given.
func (s *RecommendationService) documents(ids []string) []domain.Document {
	var docs []domain.Document
	if len(ids) == 0 {
		docs = s.registry.List()
	} else {
		for _, id := range ids {
			if d, ok := s.registry.Get(id); ok {
				docs = append(docs, d)
			}
		}
	}
	if len(docs) > recommendMaxDocuments {
		docs = docs[:recommendMaxDocuments]
	}
	return docs
}

func (s *RecommendationService) generateTopics(
	ctx context.Context, prompt, defaultType, defaultTitle string, limit int,
) ([]domain.Topic, error) {
	if s.model == nil {
		return nil, domain.ErrLLMUnavailable
	}
	text, err := s.model.GenerateText(ctx, prompt, loadPrompt(s.prompts, driven.PromptRecommendSystem))
	if err != nil {
		return nil, err
	}
	return ParseTopics(text, defaultType, defaultTitle, limit)
}

// ParseTopics decodes a JSON array of topics, tolerating a surrounding
// markdown code fence. Missing fields take defaults and the prompt
// defaults to the title.
func ParseTopics(text, defaultType, defaultTitle string, limit int) ([]domain.Topic, error) {
	var raw []domain.Topic
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &raw); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no topics returned", domain.ErrInvalidInput)
	}
	if len(raw) > limit {
		raw = raw[:limit]
	}
	for i := range raw {
		t := &raw[i]
		if t.Type == "" {
			t.Type = defaultType
		}
		if t.Title == "" {
			t.Title = defaultTitle
		}
		if t.Prompt == "" {
			t.Prompt = t.Title
		}
	}
	return raw, nil
}

// StripCodeFence removes a leading ``` or ```json fence and the closing fence.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "json") {
		text = strings.TrimSpace(text[len("json"):])
	}
	return text
}

func visualFallback(docs []domain.Document) []domain.Topic {
	topics := make([]domain.Topic, 0, len(docs))
	for _, d := range docs {
		topics = append(topics, domain.Topic{
			Type:        "overview",
			Title:       domain.Clip(d.Filename, fallbackTitleLimit) + " overview",
			Description: "Overall knowledge structure",
			Prompt:      "Generate a knowledge structure mind map about " + d.Filename,
		})
	}
	return topics
}

func chatFallback() []domain.Topic {
	return []domain.Topic{
		{
			Type:        "summary",
			Title:       "Summarize the document",
			Description: "Get a quick overview of the main points",
			Prompt:      "What are the main points of this document?",
		},
		{
			Type:        "review",
			Title:       "Generate review questions",
			Description: "Test what you have learned",
			Prompt:      "Generate 5 review questions based on the document",
		},
	}
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
