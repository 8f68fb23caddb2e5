package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

const (
	// uriScheme is the custom URI scheme for StudyBuddy resources.
	uriScheme = "studybuddy://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Documents == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of uploaded study documents",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// handleDocumentsResource returns every uploaded document.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		ID         string `json:"id"`
		Filename   string `json:"filename"`
		Status     string `json:"status"`
		ChunkCount int    `json:"chunk_count"`
		URI        string `json:"uri"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:         docs[i].ID,
			Filename:   docs[i].Filename,
			Status:     docs[i].Status.String(),
			ChunkCount: docs[i].ChunkCount,
			URI:        uriScheme + "documents/" + docs[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the text of a specific document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Documents == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// studybuddy://documents/{documentId}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	if _, err := s.ports.Documents.Get(ctx, docID); err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := documentText(ctx, s.ports.Documents, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		}},
	}, nil
}

// documentText joins a document's chunks in index order.
func documentText(ctx context.Context, docs driving.DocumentService, documentID string) (string, error) {
	chunks, err := docs.Chunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i := range chunks {
		parts[i] = chunks[i].Text
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractDocumentID extracts the document ID from a URI like studybuddy://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
