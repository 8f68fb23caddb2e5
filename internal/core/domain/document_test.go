package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTypeFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     DocumentType
		wantErr  bool
	}{
		{name: "pdf", filename: "lecture.pdf", want: DocumentTypePDF},
		{name: "upper case pptx", filename: "Slides.PPTX", want: DocumentTypePPTX},
		{name: "docx", filename: "notes.final.docx", want: DocumentTypeDOCX},
		{name: "txt", filename: "readme.txt", want: DocumentTypeTXT},
		{name: "unknown", filename: "archive.zip", wantErr: true},
		{name: "no extension", filename: "Makefile", wantErr: true},
		{name: "doc is not docx", filename: "old.doc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DocumentTypeFromFilename(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentType_Extension(t *testing.T) {
	for _, dt := range AllDocumentTypes() {
		assert.True(t, dt.IsValid())
		assert.Equal(t, "."+dt.String(), dt.Extension())
	}
	assert.False(t, DocumentType("odt").IsValid())
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	assert.False(t, DocumentStatusPending.IsTerminal())
	assert.False(t, DocumentStatusProcessing.IsTerminal())
	assert.True(t, DocumentStatusCompleted.IsTerminal())
	assert.True(t, DocumentStatusFailed.IsTerminal())
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "abc_chunk_0", ChunkID("abc", 0))
	assert.Equal(t, "abc_chunk_12", ChunkID("abc", 12))
}

func TestChunk_Metadata(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	c := Chunk{
		ID:         ChunkID("doc-1", 3),
		DocumentID: "doc-1",
		Filename:   "biology.pdf",
		FileType:   DocumentTypePDF,
		Index:      3,
		Text:       "Mitochondria are the powerhouse of the cell.",
		CreatedAt:  created,
	}

	meta := c.Metadata()
	assert.Equal(t, "doc-1", meta[MetaDocumentID])
	assert.Equal(t, "biology.pdf", meta[MetaFilename])
	assert.Equal(t, "pdf", meta[MetaFileType])
	assert.Equal(t, 3, meta[MetaChunkIndex])
	assert.Equal(t, created, MetaTime(meta[MetaCreatedAt], time.Time{}))
}
