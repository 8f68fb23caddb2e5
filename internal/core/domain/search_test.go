package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromDistance(t *testing.T) {
	assert.Equal(t, 1.0, ScoreFromDistance(0))
	assert.Equal(t, 0.5, ScoreFromDistance(1))
	assert.Equal(t, 1.0, ScoreFromDistance(-3), "negative distances clamp to identical")

	prev := ScoreFromDistance(0)
	for _, d := range []float64{0.1, 0.5, 2, 10, 1e6} {
		s := ScoreFromDistance(d)
		assert.Greater(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Less(t, s, prev, "score must fall as distance grows")
		prev = s
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 200))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "学习...", Truncate("学习资料", 2), "limit counts characters, not bytes")

	exact := string(make([]rune, 200))
	assert.Equal(t, exact, Truncate(exact, 200))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", Clip("abcdef", 3))
	assert.Equal(t, "ab", Clip("ab", 3))
}

func TestNewSourceReference(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "0123456789"
	}
	ref := NewSourceReference(SearchResult{
		Text:       long,
		DocumentID: "doc-1",
		Filename:   "a.txt",
		Score:      0.75,
	})

	assert.Equal(t, "doc-1", ref.DocumentID)
	assert.Equal(t, "a.txt", ref.DocumentName)
	assert.Equal(t, 0.75, ref.RelevanceScore)
	assert.Len(t, ref.ChunkText, SourceTextLimit+3)
	assert.Equal(t, long[:SourceTextLimit]+"...", ref.ChunkText)
}

func TestFilter_Matches(t *testing.T) {
	meta := map[string]any{MetaDocumentID: "A", MetaChunkIndex: 2}

	assert.True(t, Filter(nil).Matches(meta))
	assert.True(t, DocumentFilter("A").Matches(meta))
	assert.True(t, DocumentFilter("B", "A").Matches(meta))
	assert.False(t, DocumentFilter("B").Matches(meta))
	assert.True(t, Filter{MetaChunkIndex: {"2"}}.Matches(meta))
	assert.False(t, Filter{"missing": {"x"}}.Matches(meta))
	assert.Nil(t, DocumentFilter())
}

func TestVectorHit_ToSearchResult(t *testing.T) {
	hit := VectorHit{
		ID:   "A_chunk_1",
		Text: "text",
		Metadata: map[string]any{
			MetaDocumentID: "A",
			MetaChunkIndex: float64(1),
		},
		Distance: 3,
	}

	r := hit.ToSearchResult()
	assert.Equal(t, "A", r.DocumentID)
	assert.Equal(t, "Unknown", r.Filename)
	assert.Equal(t, 1, r.ChunkIndex)
	assert.Equal(t, 0.25, r.Score)
}

func TestMetaTime(t *testing.T) {
	fallback := time.Unix(0, 0)
	assert.Equal(t, fallback, MetaTime(nil, fallback))
	assert.Equal(t, fallback, MetaTime("yesterday", fallback))

	got := MetaTime("2024-05-06T07:08:09.123456", fallback)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 123456000, got.Nanosecond())
}
