package chroma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

func TestNewEmbeddingFunction_UnsupportedProvider(t *testing.T) {
	for _, p := range []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderHashing, ""} {
		_, err := NewEmbeddingFunction(domain.EmbeddingSettings{Provider: p})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "provider %q", p)
	}
}

func TestWhereFilter_Empty(t *testing.T) {
	assert.Nil(t, whereFilter(nil))
	assert.Nil(t, whereFilter(domain.Filter{}))
}

func TestWhereFilter_DocumentIDs(t *testing.T) {
	where := whereFilter(domain.DocumentFilter("a", "b"))
	require.NotNil(t, where)

	raw, err := where.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), domain.MetaDocumentID)
	assert.Contains(t, string(raw), "$in")
}

func TestWhereFilter_MultipleKeys(t *testing.T) {
	where := whereFilter(domain.Filter{
		domain.MetaDocumentID: {"a"},
		domain.MetaFileType:   {"pdf"},
	})
	require.NotNil(t, where)

	raw, err := where.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "$and")
}

func TestDocumentMetadataRoundTrip(t *testing.T) {
	in := domain.Chunk{
		ID:         "d_chunk_3",
		DocumentID: "d",
		Filename:   "notes.pdf",
		FileType:   domain.DocumentTypePDF,
		Index:      3,
	}.Metadata()

	out := fromDocumentMetadata(toDocumentMetadata(in))
	assert.Equal(t, "d", out[domain.MetaDocumentID])
	assert.Equal(t, "notes.pdf", out[domain.MetaFilename])
	assert.Equal(t, "pdf", out[domain.MetaFileType])
	assert.Equal(t, 3, out[domain.MetaChunkIndex])
	assert.Equal(t, in[domain.MetaCreatedAt], out[domain.MetaCreatedAt])
}

func TestFromDocumentMetadata_Nil(t *testing.T) {
	assert.Empty(t, fromDocumentMetadata(nil))
}
