package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// DefaultMaxUploadBytes caps the multipart body of an upload.
const DefaultMaxUploadBytes = 50 << 20

// Option configures a Server.
type Option func(*Server)

// WithCORSOrigins allows browser calls from the given origins.
// "*" allows any origin.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		for _, o := range origins {
			s.origins[o] = true
		}
	}
}

// WithLogger sets the access logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxUploadBytes caps upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// Server is the HTTP API for StudyBuddy.
type Server struct {
	ports     *Ports
	mux       *http.ServeMux
	origins   map[string]bool
	log       *slog.Logger
	maxUpload int64
}

// NewServer creates a server with all routes registered.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingDocumentService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:     ports,
		mux:       http.NewServeMux(),
		origins:   make(map[string]bool),
		log:       logger.Structured(),
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Clients may address the collection with or without a trailing slash.
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /upload/{$}", s.handleUpload)
	s.mux.HandleFunc("GET /upload", s.handleListDocuments)
	s.mux.HandleFunc("GET /upload/{$}", s.handleListDocuments)
	s.mux.HandleFunc("DELETE /upload/{id}", s.handleDeleteDocument)

	s.mux.HandleFunc("POST /qa/ask", s.handleAsk)
	s.mux.HandleFunc("POST /qa/search", s.handleSearch)

	s.mux.HandleFunc("POST /generate/visualization", s.handleVisualization)
	s.mux.HandleFunc("POST /generate/notes", s.handleNotes)
	s.mux.HandleFunc("POST /generate/concept-map", s.handleConceptMap)
	s.mux.HandleFunc("POST /generate/from-knowledge", s.handleFromKnowledge)

	s.mux.HandleFunc("POST /recommendations/visualization", s.handleVisualizationTopics)
	s.mux.HandleFunc("POST /recommendations/chat", s.handleChatTopics)

	s.mux.HandleFunc("POST /documents/{id}/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /keywords", s.handleKeywords)
}

// Handler returns the routed handler wrapped in CORS and access logging.
func (s *Server) Handler() http.Handler {
	return s.accessLog(s.cors(s.mux))
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "StudyBuddy AI",
		"version":     Version,
		"description": "Multimodal study assistant with grounded question answering",
		"endpoints": map[string]string{
			"upload":          "/upload",
			"qa":              "/qa",
			"generate":        "/generate",
			"recommendations": "/recommendations",
			"keywords":        "/keywords",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response: %v", err)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode request body: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}

func unavailable(w http.ResponseWriter, what string) {
	writeStatus(w, http.StatusServiceUnavailable, what+" is not configured")
}
