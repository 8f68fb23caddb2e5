package mcp

import (
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides semantic search over the chunks.
	Search driving.SearchService

	// Answers answers questions grounded in the uploaded material.
	Answers driving.AnswerService

	// Documents manages uploaded documents.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
