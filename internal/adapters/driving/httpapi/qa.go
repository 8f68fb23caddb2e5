package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// MaxQuestionLength bounds the question accepted by /qa/ask.
const MaxQuestionLength = 2000

type askRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type searchRequest struct {
	Query       string   `json:"query"`
	TopK        int      `json:"top_k,omitempty"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.ports.Answers == nil {
		unavailable(w, "answer service")
		return
	}

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if n := utf8.RuneCountInString(req.Question); n < 1 || n > MaxQuestionLength {
		writeError(w, fmt.Errorf("question must be 1..%d characters: %w", MaxQuestionLength, domain.ErrInvalidInput))
		return
	}

	answer, err := s.ports.Answers.Ask(r.Context(), req.Question, req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	if answer.Sources == nil {
		answer.Sources = []domain.SourceReference{}
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("query is required: %w", domain.ErrInvalidInput))
		return
	}
	if req.TopK < 0 {
		writeError(w, fmt.Errorf("top_k must not be negative: %w", domain.ErrInvalidInput))
		return
	}

	results, err := s.ports.Search.Search(r.Context(), req.Query, domain.SearchOptions{
		TopK:        req.TopK,
		DocumentIDs: req.DocumentIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Results: results, Total: len(results)})
}
