// Package tui provides an interactive terminal user interface for studybuddy.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Search finds chunks matching a query. Required.
	Search driving.SearchService

	// Answers produces grounded answers. The ask view is hidden without it.
	Answers driving.AnswerService

	// Documents lists, shows and deletes uploaded documents. Required.
	Documents driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
