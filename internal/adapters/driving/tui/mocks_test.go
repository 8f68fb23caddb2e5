package tui

import (
	"context"
	"errors"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	results []domain.SearchResult
	err     error
}

func (m *MockSearchService) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return m.results, m.err
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	answer *domain.Answer
	err    error
}

func (m *MockAnswerService) Ask(context.Context, string, []string) (*domain.Answer, error) {
	return m.answer, m.err
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	docs   []domain.Document
	chunks []domain.Chunk
	err    error
}

func (m *MockDocumentService) Ingest(context.Context, []byte, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (m *MockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *MockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDocumentService) Delete(context.Context, string) (bool, error) {
	return true, m.err
}

func (m *MockDocumentService) Chunks(context.Context, string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

func (m *MockDocumentService) Resync(context.Context) error {
	return m.err
}
