package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// The vector index returns it when a chunk id is re-added.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates an unknown document extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDecode indicates text could not be decoded with any known encoding.
	ErrDecode = errors.New("decode failed")

	// ErrIngestion indicates a document could not be parsed, chunked or stored.
	ErrIngestion = errors.New("ingestion failed")

	// ErrModelInvocation indicates a generative model backend failed.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrAnswerGeneration indicates retrieval succeeded but the answer could not be generated.
	ErrAnswerGeneration = errors.New("answer generation failed")

	// ErrNoImage indicates the image model returned no image.
	ErrNoImage = errors.New("no image generated")

	// ErrLLMUnavailable indicates the generative model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingMismatch indicates stored vectors came from a different
	// embedding model than the one configured.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrConfigNotFound indicates a configuration key has no value.
	ErrConfigNotFound = errors.New("config not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// UnsupportedFormatError is returned for an unrecognised file extension.
// It is raised before anything is stored.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	supported := make([]string, 0, len(AllDocumentTypes()))
	for _, t := range AllDocumentTypes() {
		supported = append(supported, t.Extension())
	}
	ext := e.Ext
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported format %s, supported: %s", ext, strings.Join(supported, ", "))
}

// Is matches ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// DecodeError is returned when no candidate encoding could decode a text file.
type DecodeError struct {
	Tried []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode text, tried %s", strings.Join(e.Tried, ", "))
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// IngestionError wraps any failure while turning an upload into chunks.
type IngestionError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.DocumentID, e.Stage, e.Err)
}

// Is matches ErrIngestion.
func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// ModelInvocationError wraps a generative backend failure.
type ModelInvocationError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

// Is matches ErrModelInvocation.
func (e *ModelInvocationError) Is(target error) bool {
	return target == ErrModelInvocation
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// AnswerGenerationError is returned by the answer assembler when the
// model call fails after retrieval has succeeded.
type AnswerGenerationError struct {
	Err error
}

func (e *AnswerGenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

// Is matches ErrAnswerGeneration.
func (e *AnswerGenerationError) Is(target error) bool {
	return target == ErrAnswerGeneration
}

func (e *AnswerGenerationError) Unwrap() error {
	return e.Err
}

// CleanupWarning is a non-fatal failure in a best-effort cleanup path.
// It is logged and never returned from the operation that produced it.
type CleanupWarning struct {
	DocumentID string
	Step       string
	Err        error
}

func (w *CleanupWarning) Error() string {
	return fmt.Sprintf("cleanup %s for document %s: %v", w.Step, w.DocumentID, w.Err)
}

func (w *CleanupWarning) Unwrap() error {
	return w.Err
}
