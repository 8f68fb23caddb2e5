package httpapi

import (
	"net/http"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

type analyzeRequest struct {
	Task string `json:"task"`
}

type analyzeResponse struct {
	DocumentID string `json:"document_id"`
	Task       string `json:"task"`
	Result     string `json:"result"`
}

// handleAnalyze runs a whole-document task. An empty task summarises.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.ports.Analysis == nil {
		unavailable(w, "analysis service")
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task := domain.AnalysisTask(req.Task)
	if task == "" {
		task = domain.TaskSummarize
	}

	id := r.PathValue("id")
	result, err := s.ports.Analysis.Analyze(r.Context(), id, task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{DocumentID: id, Task: string(task), Result: result})
}
