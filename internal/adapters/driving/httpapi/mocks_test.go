package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

type mockDocumentService struct {
	ingested  *domain.Document
	ingestErr error
	filename  string
	content   []byte
	documents []domain.Document
	listErr   error
	deleted   bool
	deleteErr error
	deletedID string
}

func (m *mockDocumentService) Ingest(_ context.Context, content []byte, filename string) (*domain.Document, error) {
	m.content = content
	m.filename = filename
	return m.ingested, m.ingestErr
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.listErr
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (bool, error) {
	m.deletedID = id
	return m.deleted, m.deleteErr
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockDocumentService) Resync(_ context.Context) error {
	return nil
}

type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	question    string
	documentIDs []string
}

func (m *mockAnswerService) Ask(_ context.Context, question string, documentIDs []string) (*domain.Answer, error) {
	m.question = question
	m.documentIDs = documentIDs
	return m.answer, m.err
}

type mockVisualizationService struct {
	image    *domain.Image
	err      error
	req      driving.VisualizationRequest
	title    string
	content  string
	concepts []string
	aspect   string
	style    domain.VisualizationStyle
}

func (m *mockVisualizationService) Visualize(_ context.Context, req driving.VisualizationRequest) (*domain.Image, error) {
	m.req = req
	return m.image, m.err
}

func (m *mockVisualizationService) StudyNotes(_ context.Context, title, content, aspectRatio string) (*domain.Image, error) {
	m.title, m.content, m.aspect = title, content, aspectRatio
	return m.image, m.err
}

func (m *mockVisualizationService) ConceptMap(
	_ context.Context, centralTopic string, concepts []string, aspectRatio string,
) (*domain.Image, error) {
	m.title, m.concepts, m.aspect = centralTopic, concepts, aspectRatio
	return m.image, m.err
}

func (m *mockVisualizationService) FromKnowledge(
	_ context.Context, topic string, style domain.VisualizationStyle, aspectRatio string,
) (*domain.Image, error) {
	m.title, m.style, m.aspect = topic, style, aspectRatio
	return m.image, m.err
}

type mockRecommendationService struct {
	topics      []domain.Topic
	keywords    []domain.Keyword
	err         error
	documentIDs []string
	history     []domain.ConversationMessage
	n           int
}

func (m *mockRecommendationService) VisualizationTopics(
	_ context.Context, documentIDs []string, history []domain.ConversationMessage,
) ([]domain.Topic, error) {
	m.documentIDs, m.history = documentIDs, history
	return m.topics, m.err
}

func (m *mockRecommendationService) ChatTopics(
	_ context.Context, documentIDs []string, history []domain.ConversationMessage,
) ([]domain.Topic, error) {
	m.documentIDs, m.history = documentIDs, history
	return m.topics, m.err
}

func (m *mockRecommendationService) TrendingKeywords(_ context.Context, documentIDs []string, n int) ([]domain.Keyword, error) {
	m.documentIDs, m.n = documentIDs, n
	return m.keywords, m.err
}

type mockAnalysisService struct {
	result     string
	err        error
	documentID string
	task       domain.AnalysisTask
}

func (m *mockAnalysisService) Analyze(_ context.Context, documentID string, task domain.AnalysisTask) (string, error) {
	m.documentID, m.task = documentID, task
	return m.result, m.err
}

// newTestServer builds a server around ports, filling required ports with empty mocks.
func newTestServer(t *testing.T, ports *Ports, opts ...Option) *Server {
	t.Helper()
	if ports.Documents == nil {
		ports.Documents = &mockDocumentService{}
	}
	if ports.Search == nil {
		ports.Search = &mockSearchService{}
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	s, err := NewServer(ports, opts...)
	require.NoError(t, err)
	return s
}

// do sends a request through the full handler chain.
func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
