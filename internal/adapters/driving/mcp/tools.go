package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query       string   `json:"query" jsonschema:"the text to find similar passages for"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict results to these documents"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question    string   `json:"question" jsonschema:"the question to answer from the study material"`
	DocumentIDs []string `json:"document_ids,omitempty" jsonschema:"restrict retrieval to these documents"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string                   `json:"answer"`
	Sources []domain.SourceReference `json:"sources"`
}

// ListDocumentsInput is the (empty) input schema for list_documents.
type ListDocumentsInput struct{}

// DocumentsOutput is the output schema for list_documents.
type DocumentsOutput struct {
	Documents []domain.Document `json:"documents"`
	Count     int               `json:"count"`
}

// DocumentInput identifies a single document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document id"`
}

// DocumentOutput is the output schema for get_document.
type DocumentOutput struct {
	Document domain.Document `json:"document"`
	Text     string          `json:"text,omitempty"`
}

// DeleteOutput is the output schema for delete_document.
type DeleteOutput struct {
	Deleted bool `json:"deleted"`
}

// defaultSearchLimit mirrors the retriever default.
const defaultSearchLimit = domain.DefaultTopK

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find passages in the uploaded study material similar to a query",
	}, s.handleSearch)

	if s.ports.Answers != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only the uploaded study material, with sources",
		}, s.handleAsk)
	}

	if s.ports.Documents != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List uploaded study documents",
		}, s.handleListDocuments)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_document",
			Description: "Get a document's metadata and full text",
		}, s.handleGetDocument)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "delete_document",
			Description: "Delete a document and all of its chunks",
		}, s.handleDeleteDocument)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{TopK: limit, DocumentIDs: input.DocumentIDs}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].DocumentID,
			Filename:   results[i].Filename,
			ChunkIndex: results[i].ChunkIndex,
			Score:      results[i].Score,
			Content:    results[i].Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answers == nil {
		return nil, AskOutput{}, ErrAnswersUnavailable
	}
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Answers.Ask(ctx, input.Question, input.DocumentIDs)
	if err != nil {
		return nil, AskOutput{}, err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.SourceReference{}
	}
	return nil, AskOutput{Answer: answer.Answer, Sources: sources}, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	if s.ports.Documents == nil {
		return nil, DocumentsOutput{}, ErrDocumentsUnavailable
	}

	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return nil, DocumentsOutput{Documents: docs, Count: len(docs)}, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Documents == nil {
		return nil, DocumentOutput{}, ErrDocumentsUnavailable
	}

	doc, err := s.ports.Documents.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	text, err := documentText(ctx, s.ports.Documents, doc.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{Document: *doc, Text: text}, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if s.ports.Documents == nil {
		return nil, DeleteOutput{}, ErrDocumentsUnavailable
	}

	deleted, err := s.ports.Documents.Delete(ctx, input.DocumentID)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Deleted: deleted}, nil
}
