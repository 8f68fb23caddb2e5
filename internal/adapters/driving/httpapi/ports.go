// Package httpapi serves StudyBuddy over a JSON HTTP API for the web frontend.
package httpapi

import (
	"errors"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("httpapi: document service is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports the API exposes.
// Documents and Search are required. The rest disable their routes
// with 503 when nil.
type Ports struct {
	Documents       driving.DocumentService
	Search          driving.SearchService
	Answers         driving.AnswerService
	Visualization   driving.VisualizationService
	Recommendations driving.RecommendationService
	Analysis        driving.AnalysisService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
