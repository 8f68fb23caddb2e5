package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/embedding/hashing"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/memory"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers/plaintext"
	"github.com/Arlieeee/StudyBuddy-AI/internal/postprocessors"
)

// --- Mock implementations ---

// mockModel implements driven.GenerativeModel for testing.
type mockModel struct {
	mu sync.Mutex

	text     string
	textErr  error
	textFunc func(prompt, system string) (string, error)
	image    []byte
	imageErr error

	prompts  []string
	systems  []string
	aspects  []string
	imagePrs []string
}

func (m *mockModel) GenerateText(_ context.Context, prompt, system string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, system)
	m.mu.Unlock()
	if m.textFunc != nil {
		return m.textFunc(prompt, system)
	}
	return m.text, m.textErr
}

func (m *mockModel) GenerateImage(_ context.Context, prompt, aspect string) ([]byte, error) {
	m.mu.Lock()
	m.imagePrs = append(m.imagePrs, prompt)
	m.aspects = append(m.aspects, aspect)
	m.mu.Unlock()
	return m.image, m.imageErr
}

func (m *mockModel) ModelName() string            { return "mock-model" }
func (m *mockModel) Ping(_ context.Context) error { return nil }
func (m *mockModel) Close() error                 { return nil }

func (m *mockModel) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// faultyIndex wraps a real index and fails selected operations.
type faultyIndex struct {
	driven.VectorIndex
	addErr    error
	getErr    error
	queryErr  error
	deleteErr error
	countErr  error
}

func (f *faultyIndex) Add(ctx context.Context, ids, texts []string, metas []map[string]any) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.VectorIndex.Add(ctx, ids, texts, metas)
}

func (f *faultyIndex) Get(ctx context.Context, filter domain.Filter) ([]domain.VectorRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.VectorIndex.Get(ctx, filter)
}

func (f *faultyIndex) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.VectorHit, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.VectorIndex.Query(ctx, text, k, filter)
}

func (f *faultyIndex) Delete(ctx context.Context, ids []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.VectorIndex.Delete(ctx, ids)
}

func (f *faultyIndex) Count(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.VectorIndex.Count(ctx)
}

// mockUploads implements driven.UploadStore in memory.
type mockUploads struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	removeErr error
}

func newMockUploads() *mockUploads {
	return &mockUploads{files: make(map[string][]byte)}
}

func (m *mockUploads) Save(_ context.Context, id, ext string, content []byte) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = content
	return "/uploads/" + id + ext, nil
}

func (m *mockUploads) Remove(_ context.Context, id string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	return nil
}

func (m *mockUploads) Dir() string { return "/uploads" }

func (m *mockUploads) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[id]
	return ok
}

// mockExtractor implements driven.TextExtractor with a fixed result.
type mockExtractor struct {
	text string
	err  error
}

func (m *mockExtractor) Extract(_ context.Context, _ []byte, _ string) (*domain.ExtractedText, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ExtractedText{Text: m.text, Format: domain.DocumentTypeTXT}, nil
}

func (m *mockExtractor) SupportedTypes() []domain.DocumentType {
	return domain.AllDocumentTypes()
}

// mockConfigStore implements driven.ConfigStore over a map, the way the
// TOML store sees values after decoding.
type mockConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "studybuddy.toml" }

// mockPromptStore implements driven.PromptStore from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown prompt %q", name)
}

func (m *mockPromptStore) Reload() {}

// mockSearch implements driving.SearchService with canned results.
type mockSearch struct {
	results []domain.SearchResult
	err     error
	queries []string
	opts    []domain.SearchOptions
}

func (m *mockSearch) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// --- Fixtures ---

var errBoom = errors.New("boom")

// pngBytes is a minimal PNG signature followed by padding.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

// testEnv wires the document, search and answer services over the
// in-memory index and the hashing embedder.
type testEnv struct {
	index     *memory.VectorIndex
	registry  *Registry
	uploads   *mockUploads
	documents *DocumentService
	search    *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithRAG(t, domain.RAGSettings{ChunkSize: 1000, ChunkOverlap: 200, TopK: 5})
}

func newTestEnvWithRAG(t *testing.T, rag domain.RAGSettings) *testEnv {
	t.Helper()

	index, err := memory.NewVectorIndex(hashing.NewEmbeddingService(0))
	require.NoError(t, err)

	pipeline, err := postprocessors.BuildPipeline(postprocessors.NewDefaultRegistry(), domain.PipelineConfigFor(rag))
	require.NoError(t, err)

	registry := NewRegistry()
	uploads := newMockUploads()
	return &testEnv{
		index:     index,
		registry:  registry,
		uploads:   uploads,
		documents: NewDocumentService(registry, normalisers.NewRegistry(plaintext.New()), pipeline, index, uploads),
		search:    NewSearchService(index, rag.TopK),
	}
}

func (e *testEnv) ingest(t *testing.T, filename, text string) *domain.Document {
	t.Helper()
	doc, err := e.documents.Ingest(context.Background(), []byte(text), filename)
	require.NoError(t, err)
	return doc
}

// paragraphs builds n distinct sentences about topic.
func paragraphs(topic string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Paragraph %d explains %s in detail with example number %d. ", i, topic, i)
	}
	return b.String()
}
