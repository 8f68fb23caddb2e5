package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "studybuddy://documents/doc-456",
			expected: "doc-456",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/doc-456",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "studybuddy://documents/doc-456/chunks",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocumentID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document service returns not found", func(t *testing.T) {
		ports := &Ports{Search: &mockSearchService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns documents successfully", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			documents: []domain.Document{
				{ID: "doc-1", Filename: "lecture1.pdf", Status: domain.DocumentStatusCompleted, ChunkCount: 4},
				{ID: "doc-2", Filename: "slides.pptx", Status: domain.DocumentStatusFailed},
			},
		}

		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "doc-1")
		assert.Contains(t, result.Contents[0].Text, "lecture1.pdf")
		assert.Contains(t, result.Contents[0].Text, "studybuddy://documents/doc-2")
		assert.Contains(t, result.Contents[0].Text, `"status": "failed"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			err: errors.New("storage error"),
		}

		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})

	t.Run("handles empty document list", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			documents: []domain.Document{},
		}

		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()
	doc := &domain.Document{ID: "doc-123", Filename: "notes.txt"}

	t.Run("nil document service returns not found", func(t *testing.T) {
		ports := &Ports{Search: &mockSearchService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents/doc-123")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		mockDoc := &mockDocumentService{document: doc}
		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://invalid/uri")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		mockDoc := &mockDocumentService{document: doc}
		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents/other")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns content successfully", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			document: doc,
			chunks: []domain.Chunk{
				{Index: 0, Text: "# Cell biology"},
				{Index: 1, Text: "Cells are the unit of life."},
			},
		}

		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents/doc-123")
		result, err := server.handleDocumentContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "# Cell biology\n\nCells are the unit of life.", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("returns error on chunk failure", func(t *testing.T) {
		mockDoc := &mockDocumentService{
			document:  doc,
			chunksErr: errors.New("index offline"),
		}

		ports := &Ports{Search: &mockSearchService{}, Documents: mockDoc}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("studybuddy://documents/doc-123")
		_, err = server.handleDocumentContentResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting document content")
	})
}
