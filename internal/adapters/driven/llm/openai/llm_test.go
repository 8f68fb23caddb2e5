package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func TestNewModel_RequiresKey(t *testing.T) {
	_, err := NewModel(Config{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Osmosis."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	m, err := NewModel(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := m.GenerateText(context.Background(), "What moves water?", "Answer briefly.")
	require.NoError(t, err)
	assert.Equal(t, "Osmosis.", out)
}

func TestGenerateText_NoSystem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	m, err := NewModel(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = m.GenerateText(context.Background(), "q", "")
	require.NoError(t, err)
}

func TestGenerateText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"api error", http.StatusBadRequest, `{"error":{"message":"bad model"}}`, domain.ErrModelInvocation},
		{"rate limited", http.StatusTooManyRequests, ``, domain.ErrRateLimited},
		{"no choices", http.StatusOK, `{"choices":[]}`, domain.ErrModelInvocation},
		{"garbage", http.StatusBadGateway, `<html>`, domain.ErrModelInvocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, err := NewModel(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)
			_, err = m.GenerateText(context.Background(), "q", "")
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestGenerateImage(t *testing.T) {
	img := []byte("PNGDATA")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		var req imageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1024x1536", req.Size)
		assert.Equal(t, DefaultImageModel, req.Model)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(img)}},
		})
	}))
	defer srv.Close()

	m, err := NewModel(Config{APIKey: "k", BaseURL: srv.URL, ImageModel: DefaultImageModel})
	require.NoError(t, err)

	data, err := m.GenerateImage(context.Background(), "notes card", domain.AspectPortrait)
	require.NoError(t, err)
	assert.Equal(t, img, data)
}

func TestGenerateImage_Disabled(t *testing.T) {
	m, err := NewModel(Config{APIKey: "k"})
	require.NoError(t, err)
	_, err = m.GenerateImage(context.Background(), "x", "1:1")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestImageSize(t *testing.T) {
	assert.Equal(t, "1536x1024", imageSize("16:9"))
	assert.Equal(t, "1024x1536", imageSize("9:16"))
	assert.Equal(t, "1024x1024", imageSize("1:1"))
	assert.Equal(t, "1024x1024", imageSize("wide"))
}
