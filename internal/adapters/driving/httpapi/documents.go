package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

type documentListResponse struct {
	Documents []domain.Document `json:"documents"`
	Total     int               `json:"total"`
}

type deleteResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

// handleUpload ingests the multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		writeStatus(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeStatus(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	// Reject unknown formats before reading the body.
	if _, err := domain.DocumentTypeFromFilename(header.Filename); err != nil {
		writeError(w, err)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("read upload: %w", err))
		return
	}

	doc, err := s.ports.Documents.Ingest(r.Context(), content, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Documents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: docs, Total: len(docs)})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.ports.Documents.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeStatus(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Message: "document deleted", DocumentID: id})
}
