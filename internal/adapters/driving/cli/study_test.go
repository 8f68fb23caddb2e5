package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func TestAnalyzeCmd_DefaultTask(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("analyze", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSummarize, mocks.analysis.lastTask)
	assert.Contains(t, out, "Cells divide by mitosis.")
}

func TestAnalyzeCmd_Task(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("analyze", "doc-1", "-t", "generate_questions")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskGenerateQuestions, mocks.analysis.lastTask)
}

func TestAnalyzeCmd_InvalidTask(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("analyze", "doc-1", "--task", "translate")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnalyzeCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("analyze", "missing")
	assert.EqualError(t, err, "document not found: missing")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("analyze", "doc-1", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"document_id":"doc-1","task":"summarize","result":"Cells divide by mitosis."}`, out)
}

func TestKeywordsCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("keywords", "-n", "5", "--doc", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 5, mocks.recommendations.lastN)
	assert.Equal(t, []string{"doc-1"}, mocks.recommendations.lastDocs)
	assert.Contains(t, out, "mitosis")
	assert.Contains(t, out, "0.900")
}

func TestKeywordsCmd_InvalidTop(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("keywords", "--top", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKeywordsCmd_EmptyJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.recommendations.keywords = nil

	out, err := execute("keywords", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestRecommendCmd_Visualization(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("recommend", "visualization", "--doc", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, mocks.recommendations.lastDocs)
	assert.Contains(t, out, "[1] Cell cycle (concept)")
	assert.Contains(t, out, "> Draw the cell cycle")
}

func TestRecommendCmd_Chat(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("recommend", "chat", "--doc", "doc-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-2"}, mocks.recommendations.lastDocs)
	assert.Contains(t, out, "Why divide?")
	assert.NotContains(t, out, "Cell cycle")
}

func TestRecommendCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("recommend", "chat", "--json")
	require.NoError(t, err)

	var payload struct {
		Topics []domain.Topic `json:"topics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Topics, 1)
	assert.Equal(t, "Why do cells divide?", payload.Topics[0].Prompt)
}

func TestVisualizeCmd_Default(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	out := filepath.Join(t.TempDir(), "img.png")

	stdout, err := execute("visualize", "cell", "division", "-o", out, "--style", "diagram")
	require.NoError(t, err)
	assert.Equal(t, "visualize", mocks.visualization.mode)
	assert.Equal(t, "cell division", mocks.visualization.request.Topic)
	assert.Equal(t, domain.StyleDiagram, mocks.visualization.request.Style)
	assert.Contains(t, stdout, "Saved "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, mocks.visualization.image.Data, data)
}

func TestVisualizeCmd_Modes(t *testing.T) {
	notes := writeTempFile(t, "notes.txt", "Prophase, metaphase")

	tests := []struct {
		name string
		args []string
		mode string
	}{
		{"from knowledge", []string{"--from-knowledge"}, "knowledge"},
		{"concept map", []string{"--concepts", "prophase,metaphase"}, "concepts"},
		{"study notes", []string{"--notes-file", notes}, "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()

			args := append([]string{"visualize", "mitosis", "-o", filepath.Join(t.TempDir(), "x.png")}, tt.args...)
			_, err := execute(args...)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, mocks.visualization.mode)
		})
	}
}

func TestVisualizeCmd_ConceptsAndNotes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	notes := writeTempFile(t, "notes.txt", "Prophase")

	_, err := execute("visualize", "mitosis", "--concepts", "a", "--notes-file", notes)
	assert.Error(t, err)
	assert.Empty(t, mocks.visualization.mode)
}

func TestVisualizeCmd_InvalidOptions(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("visualize", "x", "--style", "cartoon")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resetFlags()
	_, err = execute("visualize", "x", "--aspect-ratio", "2:1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVisualizeCmd_NoImage(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.visualization.image = &domain.Image{}

	_, err := execute("visualize", "x", "-o", filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, domain.ErrNoImage)
}

func TestImageFilename(t *testing.T) {
	assert.Equal(t, "cell_division.png", imageFilename("cell division", "image/png"))
	assert.Equal(t, "a_b.jpg", imageFilename("a/b", "image/jpeg"))
	assert.Equal(t, "visualization.webp", imageFilename("", "image/webp"))
	assert.Len(t, imageFilename(strings.Repeat("a", 100), ""), 44)
}

func TestStudyCmds_ServiceNotConfigured(t *testing.T) {
	defer resetFlags()
	SetServices(nil)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"analyze", "doc-1"}, "analysis service not configured"},
		{[]string{"keywords"}, "recommendation service not configured"},
		{[]string{"recommend", "visualization"}, "recommendation service not configured"},
		{[]string{"recommend", "chat"}, "recommendation service not configured"},
		{[]string{"visualize", "x"}, "visualization service not configured"},
	}
	for _, tt := range tests {
		_, err := execute(tt.args...)
		assert.EqualError(t, err, tt.want, strings.Join(tt.args, " "))
	}
}
