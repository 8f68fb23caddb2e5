package domain

// RawDocument is an uploaded file before text extraction.
type RawDocument struct {
	// ID is the document id assigned at upload.
	ID string

	// Filename is the name the file was uploaded with.
	Filename string

	// Type is the format declared by the filename's extension.
	Type DocumentType

	// Content is the raw bytes.
	Content []byte
}
