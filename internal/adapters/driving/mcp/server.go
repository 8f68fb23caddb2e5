package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

// DefaultSessionTimeout closes idle HTTP sessions.
const DefaultSessionTimeout = 30 * time.Minute

// Server exposes the study library to MCP clients.
type Server struct {
	ports          *Ports
	server         *mcp.Server
	log            *slog.Logger
	sessionTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the MCP runtime.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSessionTimeout sets how long an idle HTTP session is kept.
// Zero keeps sessions until the client disconnects.
func WithSessionTimeout(d time.Duration) Option {
	return func(s *Server) { s.sessionTimeout = d }
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:          ports,
		log:            logger.Structured(),
		sessionTimeout: DefaultSessionTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "studybuddy",
		Title:   "StudyBuddy",
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: instructions(ports),
		Logger:       s.log,
		HasTools:     true,
		HasResources: ports.Documents != nil,
	})

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells the client which study tools this instance offers.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("StudyBuddy serves the user's uploaded study material ")
	b.WriteString("(PDF, PPTX, DOCX and TXT files split into chunks).\n")
	b.WriteString("- search: find passages similar to a query. Scores are in [0, 1], higher is closer.\n")
	if ports.Answers != nil {
		b.WriteString("- ask: answer a question from the material only. The answer cites its sources ")
		b.WriteString("and says so when the material does not cover the question.\n")
	}
	if ports.Documents != nil {
		b.WriteString("- list_documents, get_document, delete_document: manage uploads. ")
		b.WriteString("Document text is also readable as " + uriScheme + "documents/{documentId}.\n")
	}
	b.WriteString("Pass document_ids to restrict search to specific documents.")
	return b.String()
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over streamable HTTP on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.log.Info("mcp server listening", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// HTTPHandler returns the streamable HTTP handler for this server.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{
		Logger:         s.log,
		SessionTimeout: s.sessionTimeout,
	})
}
