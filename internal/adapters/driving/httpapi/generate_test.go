package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

var testImage = &domain.Image{Data: []byte("\x89PNG"), MIMEType: "image/png", Description: "Cells (diagram)"}

func decodeImage(t *testing.T, body []byte) imageResponse {
	t.Helper()
	var got imageResponse
	require.NoError(t, json.Unmarshal(body, &got))
	return got
}

func TestServer_GenerateVisualization(t *testing.T) {
	t.Run("renders", func(t *testing.T) {
		vis := &mockVisualizationService{image: testImage}
		s := newTestServer(t, &Ports{Visualization: vis})

		rec := do(s, http.MethodPost, "/generate/visualization", `{
			"prompt": "Cells",
			"knowledge_context": "ctx",
			"conversation_history": "hist",
			"style": "diagram",
			"aspect_ratio": "1:1"
		}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeImage(t, rec.Body.Bytes())
		assert.Equal(t, base64.StdEncoding.EncodeToString(testImage.Data), got.ImageBase64)
		assert.Equal(t, "Cells (diagram)", got.Description)
		assert.Equal(t, "image/png", got.MIMEType)

		assert.Equal(t, "Cells", vis.req.Topic)
		assert.Equal(t, "ctx", vis.req.KnowledgeContext)
		assert.Equal(t, "hist", vis.req.ConversationHistory)
		assert.Equal(t, domain.StyleDiagram, vis.req.Style)
		assert.Equal(t, "1:1", vis.req.AspectRatio)
	})

	t.Run("prompt bounds", func(t *testing.T) {
		s := newTestServer(t, &Ports{Visualization: &mockVisualizationService{image: testImage}})
		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/generate/visualization", `{}`).Code)
		long := strings.Repeat("a", MaxPromptLength+1)
		assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/generate/visualization", `{"prompt":"`+long+`"}`).Code)
	})

	t.Run("no image is a server error", func(t *testing.T) {
		s := newTestServer(t, &Ports{Visualization: &mockVisualizationService{err: domain.ErrNoImage}})
		rec := do(s, http.MethodPost, "/generate/visualization", `{"prompt":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("empty image data is a server error", func(t *testing.T) {
		s := newTestServer(t, &Ports{Visualization: &mockVisualizationService{image: &domain.Image{}}})
		rec := do(s, http.MethodPost, "/generate/visualization", `{"prompt":"x"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("model not configured", func(t *testing.T) {
		s := newTestServer(t, &Ports{Visualization: &mockVisualizationService{err: domain.ErrLLMUnavailable}})
		rec := do(s, http.MethodPost, "/generate/visualization", `{"prompt":"x"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no visualization service", func(t *testing.T) {
		s := newTestServer(t, &Ports{})
		for _, path := range []string{"/generate/visualization", "/generate/notes", "/generate/concept-map", "/generate/from-knowledge"} {
			rec := do(s, http.MethodPost, path, `{}`)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		}
	})
}

func TestServer_GenerateNotes(t *testing.T) {
	vis := &mockVisualizationService{image: testImage}
	s := newTestServer(t, &Ports{Visualization: vis})

	rec := do(s, http.MethodPost, "/generate/notes", `{"title":"Mitosis","content":"phases"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mitosis", vis.title)
	assert.Equal(t, "phases", vis.content)
	assert.Empty(t, vis.aspect)
}

func TestServer_GenerateNotes_InvalidInput(t *testing.T) {
	vis := &mockVisualizationService{err: domain.ErrInvalidInput}
	s := newTestServer(t, &Ports{Visualization: vis})

	rec := do(s, http.MethodPost, "/generate/notes", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GenerateConceptMap(t *testing.T) {
	vis := &mockVisualizationService{image: testImage}
	s := newTestServer(t, &Ports{Visualization: vis})

	rec := do(s, http.MethodPost, "/generate/concept-map", `{"central_topic":"Energy","concepts":["ATP","Glucose"],"aspect_ratio":"4:3"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Energy", vis.title)
	assert.Equal(t, []string{"ATP", "Glucose"}, vis.concepts)
	assert.Equal(t, "4:3", vis.aspect)
}

func TestServer_GenerateFromKnowledge(t *testing.T) {
	vis := &mockVisualizationService{image: testImage}
	s := newTestServer(t, &Ports{Visualization: vis})

	rec := do(s, http.MethodPost, "/generate/from-knowledge", `{"topic":"Krebs cycle","style":"mindmap"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Krebs cycle", vis.title)
	assert.Equal(t, domain.StyleMindmap, vis.style)
}
