// Package chroma provides a VectorIndex backed by a Chroma server.
//
// Embeddings are computed server-side by a Chroma embedding function
// built from the configured embedding provider. Only providers with a
// Chroma embedding function (Gemini, OpenAI) can be used.
package chroma

import (
	"context"
	"fmt"
	"sort"

	chromav2 "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	"github.com/amikos-tech/chroma-go/pkg/embeddings/openai"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Config configures the Chroma store.
type Config struct {
	// BaseURL is the Chroma server URL.
	BaseURL string

	// Collection is the collection name.
	Collection string

	// Embedding selects the server-side embedding function.
	Embedding domain.EmbeddingSettings
}

// Store implements driven.VectorIndex on a Chroma collection.
type Store struct {
	client chromav2.Client
	col    chromav2.Collection
}

var _ driven.VectorIndex = (*Store)(nil)

// NewEmbeddingFunction builds the Chroma embedding function for settings.
func NewEmbeddingFunction(cfg domain.EmbeddingSettings) (embeddings.EmbeddingFunction, error) {
	switch cfg.Provider {
	case domain.AIProviderGemini:
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.APIKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Model)))
		if err != nil {
			return nil, fmt.Errorf("creating Gemini embedding function: %w", err)
		}
		return ef, nil
	case domain.AIProviderOpenAI:
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.APIKey,
			openai.WithModel(openai.EmbeddingModel(cfg.Model)))
		if err != nil {
			return nil, fmt.Errorf("creating OpenAI embedding function: %w", err)
		}
		return ef, nil
	default:
		return nil, fmt.Errorf("%w: chroma backend has no embedding function for provider %q",
			domain.ErrInvalidInput, cfg.Provider)
	}
}

// NewStore connects to Chroma and opens (or creates) the collection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultChromaURL
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	ef, err := NewEmbeddingFunction(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	client, err := chromav2.NewHTTPClient(chromav2.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVectorIndexUnavailable, err)
	}

	col, err := client.GetOrCreateCollection(ctx, cfg.Collection,
		chromav2.WithEmbeddingFunctionCreate(ef))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: opening collection %s: %v",
			domain.ErrVectorIndexUnavailable, cfg.Collection, err)
	}

	return &Store{client: client, col: col}, nil
}

// Add stores chunks after checking that none of the ids exist yet.
func (s *Store) Add(ctx context.Context, ids, texts []string, metadatas []map[string]any) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: ids, texts and metadatas differ in length", domain.ErrInvalidInput)
	}
	if len(ids) == 0 {
		return nil
	}

	docIDs := make([]chromav2.DocumentID, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: chunk %s repeated in batch", domain.ErrAlreadyExists, id)
		}
		seen[id] = struct{}{}
		docIDs[i] = chromav2.DocumentID(id)
	}

	existing, err := s.col.Get(ctx, chromav2.WithIDsGet(docIDs...))
	if err != nil {
		return fmt.Errorf("checking existing chunks: %w", err)
	}
	if found := existing.GetIDs(); len(found) > 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, found[0])
	}

	metas := make([]chromav2.DocumentMetadata, len(metadatas))
	for i, m := range metadatas {
		metas[i] = toDocumentMetadata(m)
	}

	err = s.col.Add(ctx,
		chromav2.WithIDs(docIDs...),
		chromav2.WithTexts(texts...),
		chromav2.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}

// Query returns the k nearest chunks. Chroma reports squared L2 distances.
func (s *Store) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	opts := []chromav2.CollectionQueryOption{
		chromav2.WithQueryTexts(text),
		chromav2.WithNResults(k),
	}
	if where := whereFilter(filter); where != nil {
		opts = append(opts, chromav2.WithWhereQuery(where))
	}

	r, err := s.col.Query(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	idGroups := r.GetIDGroups()
	docGroups := r.GetDocumentsGroups()
	metaGroups := r.GetMetadatasGroups()
	distGroups := r.GetDistancesGroups()
	if len(docGroups) == 0 {
		return nil, nil
	}

	docs := docGroups[0]
	hits := make([]domain.VectorHit, 0, len(docs))
	for i := range docs {
		hit := domain.VectorHit{Text: docs[i].ContentString()}
		if len(idGroups) > 0 && i < len(idGroups[0]) {
			hit.ID = string(idGroups[0][i])
		}
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			hit.Metadata = fromDocumentMetadata(metaGroups[0][i])
		}
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			hit.Distance = float64(distGroups[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Get returns every chunk matching filter.
func (s *Store) Get(ctx context.Context, filter domain.Filter) ([]domain.VectorRecord, error) {
	var opts []chromav2.CollectionGetOption
	if where := whereFilter(filter); where != nil {
		opts = append(opts, chromav2.WithWhereGet(where))
	}

	res, err := s.col.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("getting chunks: %w", err)
	}

	ids := res.GetIDs()
	docs := res.GetDocuments()
	metas := res.GetMetadatas()
	records := make([]domain.VectorRecord, 0, len(ids))
	for i, id := range ids {
		rec := domain.VectorRecord{ID: string(id)}
		if i < len(docs) {
			rec.Text = docs[i].ContentString()
		}
		if i < len(metas) {
			rec.Metadata = fromDocumentMetadata(metas[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// Delete removes chunks by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	docIDs := make([]chromav2.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chromav2.DocumentID(id)
	}
	if err := s.col.Delete(ctx, chromav2.WithIDsDelete(docIDs...)); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// DeleteWhere removes every chunk matching a non-empty filter.
func (s *Store) DeleteWhere(ctx context.Context, filter domain.Filter) error {
	where := whereFilter(filter)
	if where == nil {
		return fmt.Errorf("%w: refusing to delete without a filter", domain.ErrInvalidInput)
	}
	if err := s.col.Delete(ctx, chromav2.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close releases the HTTP client.
func (s *Store) Close() error {
	return s.client.Close()
}

// whereFilter converts a metadata filter into a Chroma where clause.
// Values are compared as strings, so filters apply to string attributes.
func whereFilter(filter domain.Filter) chromav2.WhereClause {
	if len(filter) == 0 {
		return nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]chromav2.WhereClause, 0, len(keys))
	for _, k := range keys {
		clauses = append(clauses, chromav2.InString(k, filter[k]...))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return chromav2.And(clauses...)
}

func toDocumentMetadata(meta map[string]any) chromav2.DocumentMetadata {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]*chromav2.MetaAttribute, 0, len(keys))
	for _, k := range keys {
		switch v := meta[k].(type) {
		case int:
			attrs = append(attrs, chromav2.NewIntAttribute(k, int64(v)))
		case int64:
			attrs = append(attrs, chromav2.NewIntAttribute(k, v))
		case float64:
			attrs = append(attrs, chromav2.NewFloatAttribute(k, v))
		case bool:
			attrs = append(attrs, chromav2.NewBoolAttribute(k, v))
		default:
			attrs = append(attrs, chromav2.NewStringAttribute(k, domain.MetaString(v)))
		}
	}
	return chromav2.NewDocumentMetadata(attrs...)
}

// fromDocumentMetadata reads back the chunk metadata keys.
func fromDocumentMetadata(meta chromav2.DocumentMetadata) map[string]any {
	out := make(map[string]any, 5)
	if meta == nil {
		return out
	}
	for _, k := range []string{domain.MetaDocumentID, domain.MetaFilename, domain.MetaFileType, domain.MetaCreatedAt} {
		if v, ok := meta.GetString(k); ok {
			out[k] = v
		}
	}
	if v, ok := meta.GetInt(domain.MetaChunkIndex); ok {
		out[domain.MetaChunkIndex] = int(v)
	} else if f, ok := meta.GetFloat(domain.MetaChunkIndex); ok {
		out[domain.MetaChunkIndex] = int(f)
	}
	return out
}
