package mcp

import (
	"context"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
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

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	chunks    []domain.Chunk
	deleted   bool
	err       error
	chunksErr error
}

func (m *mockDocumentService) Ingest(_ context.Context, _ []byte, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil || m.document.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.document, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) (bool, error) {
	return m.deleted, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.chunksErr
}

func (m *mockDocumentService) Resync(_ context.Context) error {
	return m.err
}
