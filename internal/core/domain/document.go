package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DocumentType is the declared format of an uploaded document.
type DocumentType string

// Supported document types.
const (
	// DocumentTypePDF is a PDF file.
	DocumentTypePDF DocumentType = "pdf"

	// DocumentTypePPTX is a PowerPoint slide deck.
	DocumentTypePPTX DocumentType = "pptx"

	// DocumentTypeDOCX is a Word document.
	DocumentTypeDOCX DocumentType = "docx"

	// DocumentTypeTXT is a plain text file.
	DocumentTypeTXT DocumentType = "txt"
)

// IsValid returns true if the document type is recognised.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypePPTX, DocumentTypeDOCX, DocumentTypeTXT:
		return true
	default:
		return false
	}
}

// Extension returns the file extension for the type, including the dot.
func (t DocumentType) Extension() string {
	return "." + string(t)
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// AllDocumentTypes returns every supported document type.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypePDF,
		DocumentTypePPTX,
		DocumentTypeDOCX,
		DocumentTypeTXT,
	}
}

// DocumentTypeFromFilename maps a filename's extension to a DocumentType.
// The comparison is case-insensitive.
func DocumentTypeFromFilename(filename string) (DocumentType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	t := DocumentType(strings.TrimPrefix(ext, "."))
	if ext == "" || !t.IsValid() {
		return "", &UnsupportedFormatError{Ext: ext}
	}
	return t, nil
}

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

// Document lifecycle states.
const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// IsTerminal returns true once a document can no longer change state.
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCompleted || s == DocumentStatusFailed
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// Document is an uploaded study document.
// Documents have no durable table of their own; the registry derives
// them from chunk metadata held by the vector index.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// Filename is the name the document was uploaded with.
	Filename string `json:"filename"`

	// FileType is the declared format.
	FileType DocumentType `json:"file_type"`

	// Status is the ingestion lifecycle state.
	Status DocumentStatus `json:"status"`

	// ChunkCount is the number of chunks stored for the document.
	ChunkCount int `json:"chunk_count"`

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time `json:"created_at"`
}

// Chunk is a bounded, contiguous span of a document's text.
// Chunks are immutable once written.
type Chunk struct {
	// ID is {DocumentID}_chunk_{Index}.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Filename is denormalised from the document for display.
	Filename string

	// FileType is denormalised from the document.
	FileType DocumentType

	// Index is the zero-based position within the document.
	Index int

	// Text is the chunk content.
	Text string

	// CreatedAt is when the chunk was written.
	CreatedAt time.Time
}

// ChunkID builds the identifier for the i-th chunk of a document.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// Metadata keys stored alongside every chunk in the vector index.
const (
	MetaDocumentID = "document_id"
	MetaFilename   = "filename"
	MetaFileType   = "file_type"
	MetaChunkIndex = "chunk_index"
	MetaCreatedAt  = "created_at"
)

// Metadata returns the index metadata for the chunk.
func (c Chunk) Metadata() map[string]any {
	return map[string]any{
		MetaDocumentID: c.DocumentID,
		MetaFilename:   c.Filename,
		MetaFileType:   c.FileType.String(),
		MetaChunkIndex: c.Index,
		MetaCreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ExtractedText is the output of a text extractor.
type ExtractedText struct {
	// Text is the plain text of the whole document.
	Text string

	// Format is the type the text was extracted from.
	Format DocumentType

	// Metadata holds structural counts such as page_count or slide_count.
	Metadata map[string]any
}
