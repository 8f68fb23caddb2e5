package httpapi

import (
	"net/http"
	"strconv"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// DefaultKeywordCount is used when /keywords has no top_n.
const DefaultKeywordCount = 10

type recommendationRequest struct {
	DocumentIDs         []string                     `json:"document_ids,omitempty"`
	ConversationHistory []domain.ConversationMessage `json:"conversation_history,omitempty"`
}

type topicsResponse struct {
	Topics []domain.Topic `json:"topics"`
}

type keywordsResponse struct {
	Keywords []domain.Keyword `json:"keywords"`
	Topics   []string         `json:"topics"`
}

func (s *Server) handleVisualizationTopics(w http.ResponseWriter, r *http.Request) {
	if s.ports.Recommendations == nil {
		unavailable(w, "recommendation service")
		return
	}

	var req recommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	topics, err := s.ports.Recommendations.VisualizationTopics(r.Context(), req.DocumentIDs, req.ConversationHistory)
	writeTopics(w, topics, err)
}

func (s *Server) handleChatTopics(w http.ResponseWriter, r *http.Request) {
	if s.ports.Recommendations == nil {
		unavailable(w, "recommendation service")
		return
	}

	var req recommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	topics, err := s.ports.Recommendations.ChatTopics(r.Context(), req.DocumentIDs, req.ConversationHistory)
	writeTopics(w, topics, err)
}

func writeTopics(w http.ResponseWriter, topics []domain.Topic, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if topics == nil {
		topics = []domain.Topic{}
	}
	writeJSON(w, http.StatusOK, topicsResponse{Topics: topics})
}

// handleKeywords returns the trending terms across the indexed chunks.
// Query: top_n (default 10), document_id (repeatable).
func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	if s.ports.Recommendations == nil {
		unavailable(w, "recommendation service")
		return
	}

	n := DefaultKeywordCount
	if v := r.URL.Query().Get("top_n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeStatus(w, http.StatusBadRequest, "top_n must be a positive integer")
			return
		}
		n = parsed
	}

	keywords, err := s.ports.Recommendations.TrendingKeywords(r.Context(), r.URL.Query()["document_id"], n)
	if err != nil {
		writeError(w, err)
		return
	}

	topics := make([]string, len(keywords))
	for i, k := range keywords {
		topics[i] = k.Term
	}
	if keywords == nil {
		keywords = []domain.Keyword{}
	}
	writeJSON(w, http.StatusOK, keywordsResponse{Keywords: keywords, Topics: topics})
}
