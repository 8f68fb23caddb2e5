package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect opens an in-memory client session against server.
func connect(t *testing.T, server *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ss, err := server.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestServer_Initialize(t *testing.T) {
	t.Run("search only", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)
		cs := connect(t, server)

		res := cs.InitializeResult()
		require.NotNil(t, res)
		assert.Equal(t, "studybuddy", res.ServerInfo.Name)
		assert.Equal(t, "StudyBuddy", res.ServerInfo.Title)
		assert.Contains(t, res.Instructions, "- search:")
		assert.NotContains(t, res.Instructions, "- ask:")
		assert.NotContains(t, res.Instructions, "list_documents")
		assert.Equal(t, []string{"search"}, toolNames(t, cs))
	})

	t.Run("all ports", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Search:    &mockSearchService{},
			Answers:   &mockAnswerService{},
			Documents: &mockDocumentService{},
		})
		require.NoError(t, err)
		cs := connect(t, server)

		instr := cs.InitializeResult().Instructions
		assert.Contains(t, instr, "- ask:")
		assert.Contains(t, instr, "studybuddy://documents/{documentId}")
		assert.Equal(t,
			[]string{"ask", "delete_document", "get_document", "list_documents", "search"},
			toolNames(t, cs))
	})
}

func TestServer_Options(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}},
		WithSessionTimeout(time.Minute), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, server.sessionTimeout)
	assert.NotNil(t, server.log)

	server, err = NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTimeout, server.sessionTimeout)
}

func TestServer_HTTPHandler(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{` +
		`"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rec := httptest.NewRecorder()

	server.HTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Mcp-Session-Id"))
	assert.Contains(t, rec.Body.String(), "StudyBuddy serves")
}

func TestNewServer(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Search: &mockSearchService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("all ports creates server", func(t *testing.T) {
		ports := &Ports{
			Search:    &mockSearchService{},
			Answers:   &mockAnswerService{},
			Documents: &mockDocumentService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search only is valid", func(t *testing.T) {
		ports := &Ports{
			Search: &mockSearchService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Search:    &mockSearchService{},
			Answers:   &mockAnswerService{},
			Documents: &mockDocumentService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
