package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

var errMock = errors.New("mock failure")

var testCreatedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	docs      []domain.Document
	chunks    []domain.Chunk
	ingested  []string
	deleted   []string
	resynced  bool
	err       error
	ingestErr error
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{
		docs: []domain.Document{{
			ID:         "doc-1",
			Filename:   "biology.pdf",
			FileType:   domain.DocumentTypePDF,
			Status:     domain.DocumentStatusCompleted,
			ChunkCount: 2,
			CreatedAt:  testCreatedAt,
		}},
		chunks: []domain.Chunk{
			{ID: "doc-1_0", DocumentID: "doc-1", Index: 0, Text: "Cells are the unit of life."},
			{ID: "doc-1_1", DocumentID: "doc-1", Index: 1, Text: "Mitosis divides a cell."},
		},
	}
}

func (m *mockDocumentService) Ingest(_ context.Context, content []byte, filename string) (*domain.Document, error) {
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	m.ingested = append(m.ingested, filename)
	fileType, err := domain.DocumentTypeFromFilename(filename)
	if err != nil {
		return nil, err
	}
	return &domain.Document{
		ID:         "new-" + filename,
		Filename:   filename,
		FileType:   fileType,
		Status:     domain.DocumentStatusCompleted,
		ChunkCount: len(content)/10 + 1,
		CreatedAt:  testCreatedAt,
	}, nil
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, d := range m.docs {
		if d.ID == id {
			m.deleted = append(m.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDocumentService) Chunks(context.Context, string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Resync(context.Context) error {
	m.resynced = true
	return m.err
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	answer       *domain.Answer
	err          error
	lastQuestion string
	lastDocs     []string
}

func (m *mockAnswerService) Ask(_ context.Context, question string, docIDs []string) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastDocs = docIDs
	return m.answer, m.err
}

// mockVisualizationService implements driving.VisualizationService for testing.
type mockVisualizationService struct {
	image   *domain.Image
	err     error
	mode    string
	request driving.VisualizationRequest
	content string
	concept []string
}

func (m *mockVisualizationService) Visualize(_ context.Context, req driving.VisualizationRequest) (*domain.Image, error) {
	m.mode = "visualize"
	m.request = req
	return m.image, m.err
}

func (m *mockVisualizationService) StudyNotes(_ context.Context, _, content, _ string) (*domain.Image, error) {
	m.mode = "notes"
	m.content = content
	return m.image, m.err
}

func (m *mockVisualizationService) ConceptMap(_ context.Context, _ string, concepts []string, _ string) (*domain.Image, error) {
	m.mode = "concepts"
	m.concept = concepts
	return m.image, m.err
}

func (m *mockVisualizationService) FromKnowledge(context.Context, string, domain.VisualizationStyle, string) (*domain.Image, error) {
	m.mode = "knowledge"
	return m.image, m.err
}

// mockRecommendationService implements driving.RecommendationService for testing.
type mockRecommendationService struct {
	visual   []domain.Topic
	chat     []domain.Topic
	keywords []domain.Keyword
	err      error
	lastN    int
	lastDocs []string
}

func (m *mockRecommendationService) VisualizationTopics(_ context.Context, ids []string, _ []domain.ConversationMessage) ([]domain.Topic, error) {
	m.lastDocs = ids
	return m.visual, m.err
}

func (m *mockRecommendationService) ChatTopics(_ context.Context, ids []string, _ []domain.ConversationMessage) ([]domain.Topic, error) {
	m.lastDocs = ids
	return m.chat, m.err
}

func (m *mockRecommendationService) TrendingKeywords(_ context.Context, ids []string, n int) ([]domain.Keyword, error) {
	m.lastDocs = ids
	m.lastN = n
	return m.keywords, m.err
}

// mockAnalysisService implements driving.AnalysisService for testing.
type mockAnalysisService struct {
	result   string
	err      error
	lastTask domain.AnalysisTask
}

func (m *mockAnalysisService) Analyze(_ context.Context, id string, task domain.AnalysisTask) (string, error) {
	m.lastTask = task
	if m.err != nil {
		return "", m.err
	}
	if id != "doc-1" {
		return "", domain.ErrNotFound
	}
	return m.result, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]any
	validateErr error
	setErr      error
	embedding   domain.AIProvider
	llm         domain.AIProvider
	apiKey      string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), values: map[string]any{}}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, _, apiKey string) error {
	m.embedding = p
	m.apiKey = apiKey
	return m.setErr
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, _, apiKey string) error {
	m.llm = p
	m.apiKey = apiKey
	return m.setErr
}

func (m *mockSettingsService) SetValue(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents       *mockDocumentService
	search          *mockSearchService
	answers         *mockAnswerService
	visualization   *mockVisualizationService
	recommendations *mockRecommendationService
	analysis        *mockAnalysisService
	settings        *mockSettingsService
}

var mocks *testServices

// setupTestServices installs fresh mocks and returns a cleanup that
// removes them and resets command flags.
func setupTestServices() func() {
	mocks = &testServices{
		documents: newMockDocumentService(),
		search: &mockSearchService{results: []domain.SearchResult{{
			Text:       "Mitosis divides a cell into two identical cells.",
			DocumentID: "doc-1",
			Filename:   "biology.pdf",
			ChunkIndex: 1,
			Score:      0.87,
		}}},
		answers: &mockAnswerService{answer: &domain.Answer{
			Answer: "Mitosis produces two identical cells.",
			Sources: []domain.SourceReference{{
				DocumentID:     "doc-1",
				DocumentName:   "biology.pdf",
				ChunkText:      "Mitosis divides a cell.",
				RelevanceScore: 0.87,
			}},
		}},
		visualization: &mockVisualizationService{image: &domain.Image{
			Data:        []byte{0x89, 'P', 'N', 'G'},
			MIMEType:    "image/png",
			Description: "A diagram of mitosis",
		}},
		recommendations: &mockRecommendationService{
			visual:   []domain.Topic{{Type: "concept", Title: "Cell cycle", Description: "Phases", Prompt: "Draw the cell cycle"}},
			chat:     []domain.Topic{{Type: "qa", Title: "Why divide?", Prompt: "Why do cells divide?"}},
			keywords: []domain.Keyword{{Term: "mitosis", Score: 0.9}, {Term: "cell", Score: 0.5}},
		},
		analysis: &mockAnalysisService{result: "Cells divide by mitosis."},
		settings: newMockSettingsService(),
	}

	SetServices(&Services{
		Documents:       mocks.documents,
		Search:          mocks.search,
		Answers:         mocks.answers,
		Visualization:   mocks.visualization,
		Recommendations: mocks.recommendations,
		Analysis:        mocks.analysis,
		Settings:        mocks.settings,
		Server:          domain.ServerSettings{Addr: "127.0.0.1:0"},
		InboxDir:        "/tmp/inbox",
	})

	return func() {
		SetServices(nil)
		mocks = nil
		resetFlags()
	}
}

// resetFlags restores every command flag so tests do not leak state.
func resetFlags() {
	jsonOutput = false
	verbose = false
	configPath = ""
	searchTopK = 0
	searchDocs = nil
	askDocs = nil
	documentShowText = false
	analyzeTask = string(domain.TaskSummarize)
	keywordsTopN = 10
	keywordsDocs = nil
	recommendDocs = nil
	visualizeStyle = string(domain.StyleEducational)
	visualizeAspect = domain.AspectLandscape
	visualizeOut = ""
	visualizeFromKnowledge = false
	visualizeConcepts = nil
	visualizeNotesFile = ""
	serveAddr = ""
	serveWatch = ""

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		unset := func(f *pflag.Flag) { f.Changed = false }
		c.Flags().VisitAll(unset)
		c.PersistentFlags().VisitAll(unset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// execute runs the root command with args and returns combined output.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

// executeWithInput is execute with input fed to the command's stdin.
func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(input))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
