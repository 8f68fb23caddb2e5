package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, 768, s.Dimensions())

	s = NewEmbeddingService(Config{Model: "all-minilm"})
	assert.Equal(t, 384, s.Dimensions())
}

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)

		resp := embedResponse{}
		for i := range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float64{float64(i), 0.5})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	s := NewEmbeddingService(Config{BaseURL: srv.URL})
	out, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0, 0.5}, {1, 0.5}}, out)

	one, err := s.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.5}, one)
}

func TestEmbedBatch_Empty(t *testing.T) {
	s := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})
	out, err := s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEmbedBatch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewEmbeddingService(Config{BaseURL: srv.URL})
	_, err := s.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelInvocation)
	assert.Contains(t, err.Error(), "model not found")
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embeddings":[[1,2]]}`))
	}))
	defer srv.Close()

	s := NewEmbeddingService(Config{BaseURL: srv.URL})
	_, err := s.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrModelInvocation)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	require.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))
}
