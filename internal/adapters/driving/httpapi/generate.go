package httpapi

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

// MaxPromptLength bounds the topic accepted by /generate/visualization.
const MaxPromptLength = 1000

type visualizationRequest struct {
	Prompt              string `json:"prompt"`
	KnowledgeContext    string `json:"knowledge_context,omitempty"`
	ConversationHistory string `json:"conversation_history,omitempty"`
	Style               string `json:"style,omitempty"`
	AspectRatio         string `json:"aspect_ratio,omitempty"`
}

type notesRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type conceptMapRequest struct {
	CentralTopic string   `json:"central_topic"`
	Concepts     []string `json:"concepts"`
	AspectRatio  string   `json:"aspect_ratio,omitempty"`
}

type fromKnowledgeRequest struct {
	Topic       string `json:"topic"`
	Style       string `json:"style,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type imageResponse struct {
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type,omitempty"`
	Description string `json:"description"`
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	if s.ports.Visualization == nil {
		unavailable(w, "visualization service")
		return
	}

	var req visualizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if n := utf8.RuneCountInString(req.Prompt); n < 1 || n > MaxPromptLength {
		writeError(w, fmt.Errorf("prompt must be 1..%d characters: %w", MaxPromptLength, domain.ErrInvalidInput))
		return
	}

	img, err := s.ports.Visualization.Visualize(r.Context(), driving.VisualizationRequest{
		Topic:               req.Prompt,
		KnowledgeContext:    req.KnowledgeContext,
		ConversationHistory: req.ConversationHistory,
		Style:               domain.VisualizationStyle(req.Style),
		AspectRatio:         req.AspectRatio,
	})
	writeImage(w, img, err)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	if s.ports.Visualization == nil {
		unavailable(w, "visualization service")
		return
	}

	var req notesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	img, err := s.ports.Visualization.StudyNotes(r.Context(), req.Title, req.Content, req.AspectRatio)
	writeImage(w, img, err)
}

func (s *Server) handleConceptMap(w http.ResponseWriter, r *http.Request) {
	if s.ports.Visualization == nil {
		unavailable(w, "visualization service")
		return
	}

	var req conceptMapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	img, err := s.ports.Visualization.ConceptMap(r.Context(), req.CentralTopic, req.Concepts, req.AspectRatio)
	writeImage(w, img, err)
}

func (s *Server) handleFromKnowledge(w http.ResponseWriter, r *http.Request) {
	if s.ports.Visualization == nil {
		unavailable(w, "visualization service")
		return
	}

	var req fromKnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	img, err := s.ports.Visualization.FromKnowledge(r.Context(), req.Topic, domain.VisualizationStyle(req.Style), req.AspectRatio)
	writeImage(w, img, err)
}

// writeImage renders a generated image, or its error. A missing image is a 500.
func writeImage(w http.ResponseWriter, img *domain.Image, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if img == nil || len(img.Data) == 0 {
		writeError(w, domain.ErrNoImage)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{
		ImageBase64: base64.StdEncoding.EncodeToString(img.Data),
		MIMEType:    img.MIMEType,
		Description: img.Description,
	})
}
