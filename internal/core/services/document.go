package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// Ingestion stages reported in domain.IngestionError.
const (
	StageStore   = "store"
	StageExtract = "extract"
	StageChunk   = "chunk"
	StageIndex   = "index"
)

// errNoText is returned when extraction produced no chunkable text.
var errNoText = errors.New("document contains no extractable text")

// DocumentService ingests, lists and deletes study documents.
type DocumentService struct {
	registry  *Registry
	extractor driven.TextExtractor
	pipeline  driven.PostProcessorPipeline
	index     driven.VectorIndex
	uploads   driven.UploadStore

	newID func() string
	now   func() time.Time
}

// NewDocumentService creates a new document service.
// The uploads store is optional; without it originals are not kept.
func NewDocumentService(
	registry *Registry,
	extractor driven.TextExtractor,
	pipeline driven.PostProcessorPipeline,
	index driven.VectorIndex,
	uploads driven.UploadStore,
) *DocumentService {
	return &DocumentService{
		registry:  registry,
		extractor: extractor,
		pipeline:  pipeline,
		index:     index,
		uploads:   uploads,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Ingest stores, extracts, chunks and indexes an upload.
func (s *DocumentService) Ingest(ctx context.Context, content []byte, filename string) (*domain.Document, error) {
	logger.Section("Ingest")

	fileType, err := domain.DocumentTypeFromFilename(filename)
	if err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	doc := domain.Document{
		ID:        s.newID(),
		Filename:  filepath.Base(filename),
		FileType:  fileType,
		Status:    domain.DocumentStatusPending,
		CreatedAt: s.now().UTC(),
	}
	s.registry.Register(doc)
	logger.Debug("Registered %s as %s", doc.Filename, doc.ID)

	if s.uploads != nil {
		if _, err := s.uploads.Save(ctx, doc.ID, fileType.Extension(), content); err != nil {
			return nil, s.fail(ctx, doc, StageStore, err)
		}
	}

	doc.Status = domain.DocumentStatusProcessing
	s.registry.Register(doc)

	extracted, err := s.extractor.Extract(ctx, content, fileType.Extension())
	if err != nil {
		return nil, s.fail(ctx, doc, StageExtract, err)
	}
	logger.Debug("Extracted %d characters (%v)", len([]rune(extracted.Text)), extracted.Metadata)

	chunks, err := s.pipeline.Process(ctx, &doc, extracted.Text)
	if err != nil {
		return nil, s.fail(ctx, doc, StageChunk, err)
	}
	if len(chunks) == 0 {
		return nil, s.fail(ctx, doc, StageChunk, errNoText)
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		texts[i] = c.Text
		metadatas[i] = c.Metadata()
	}
	if err := s.index.Add(ctx, ids, texts, metadatas); err != nil {
		return nil, s.fail(ctx, doc, StageIndex, err)
	}

	doc.Status = domain.DocumentStatusCompleted
	doc.ChunkCount = len(chunks)
	s.registry.Register(doc)
	logger.Info("Ingested %s: %d chunks", doc.Filename, doc.ChunkCount)

	return &doc, nil
}

// fail marks doc as failed, removes its upload and wraps cause.
func (s *DocumentService) fail(ctx context.Context, doc domain.Document, stage string, cause error) error {
	doc.Status = domain.DocumentStatusFailed
	s.registry.Register(doc)

	if s.uploads != nil {
		if err := s.uploads.Remove(ctx, doc.ID); err != nil {
			logger.Warn("%v", &domain.CleanupWarning{DocumentID: doc.ID, Step: "remove upload", Err: err})
		}
	}

	logger.Warn("Ingest %s failed at %s: %v", doc.Filename, stage, cause)
	return &domain.IngestionError{DocumentID: doc.ID, Stage: stage, Err: cause}
}

// List returns every known document, newest first.
func (s *DocumentService) List(_ context.Context) ([]domain.Document, error) {
	return s.registry.List(), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	doc, ok := s.registry.Get(documentID)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return &doc, nil
}

// Delete removes a document and its chunks. Index and file failures are
// logged as cleanup warnings and do not fail the call.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (bool, error) {
	doc, ok := s.registry.Get(documentID)
	if !ok {
		return false, nil
	}

	if s.index != nil {
		if err := s.deleteChunks(ctx, documentID); err != nil {
			logger.Warn("%v", &domain.CleanupWarning{DocumentID: documentID, Step: "delete chunks", Err: err})
		}
	}

	s.registry.Remove(documentID)

	if s.uploads != nil {
		if err := s.uploads.Remove(ctx, documentID); err != nil {
			logger.Warn("%v", &domain.CleanupWarning{DocumentID: documentID, Step: "remove upload", Err: err})
		}
	}

	logger.Info("Deleted %s (%s)", doc.Filename, documentID)
	return true, nil
}

func (s *DocumentService) deleteChunks(ctx context.Context, documentID string) error {
	records, err := s.index.Get(ctx, domain.DocumentFilter(documentID))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return s.index.Delete(ctx, ids)
}

// Chunks returns the stored chunks of a document in index order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	doc, ok := s.registry.Get(documentID)
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	records, err := s.index.Get(ctx, domain.DocumentFilter(documentID))
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}

	chunks := make([]domain.Chunk, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, domain.Chunk{
			ID:         r.ID,
			DocumentID: documentID,
			Filename:   doc.Filename,
			FileType:   doc.FileType,
			Index:      domain.MetaInt(r.Metadata[domain.MetaChunkIndex]),
			Text:       r.Text,
			CreatedAt:  domain.MetaTime(r.Metadata[domain.MetaCreatedAt], doc.CreatedAt),
		})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// Text returns the document's chunk texts joined in index order.
// Overlapping spans are repeated.
func (s *DocumentService) Text(ctx context.Context, documentID string) (string, error) {
	chunks, err := s.Chunks(ctx, documentID)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n"), nil
}

// Resync rebuilds the registry from the vector index.
func (s *DocumentService) Resync(ctx context.Context) error {
	return s.registry.Rebuild(ctx, s.index)
}
