package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService retrieves chunks by semantic similarity.
type SearchService struct {
	index       driven.VectorIndex
	defaultTopK int
}

// NewSearchService creates a new search service.
// A non-positive defaultTopK falls back to domain.DefaultTopK.
func NewSearchService(index driven.VectorIndex, defaultTopK int) *SearchService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &SearchService{
		index:       index,
		defaultTopK: defaultTopK,
	}
}

// DefaultTopK returns the number of results used when none is requested.
func (s *SearchService) DefaultTopK() int {
	return s.defaultTopK
}

// Search returns chunks ranked by descending relevance.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	k := opts.TopK
	if k <= 0 {
		k = s.defaultTopK
	}
	filter := domain.DocumentFilter(opts.DocumentIDs...)
	logger.Debug("TopK: %d, filter: %v", k, filter)

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if count == 0 {
		logger.Debug("Empty index, returning no results")
		return []domain.SearchResult{}, nil
	}

	hits, err := s.index.Query(ctx, query, k, filter)
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		r := h.ToSearchResult()
		r.Score = clamp01(r.Score)
		results = append(results, r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	logger.Info("Final results: %d", len(results))
	return results, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
