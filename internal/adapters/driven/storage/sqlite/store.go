package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/viant/vec/search"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// deleteBatchSize bounds the number of bound parameters in one DELETE.
const deleteBatchSize = 500

// Store is a SQLite-backed vector index. Embeddings are computed by the
// configured EmbeddingService and stored as little-endian float32 blobs.
type Store struct {
	db       *sql.DB
	path     string
	embedder driven.EmbeddingService
}

var _ driven.VectorIndex = (*Store)(nil)

// NewStore creates a new SQLite vector index in the specified data directory.
// If dataDir is empty, defaults to data/vectordb.
func NewStore(dataDir string, embedder driven.EmbeddingService) (*Store, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if dataDir == "" {
		dataDir = domain.DefaultVectorDBDir
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:       db,
		path:     dbPath,
		embedder: embedder,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.checkEmbedder(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Keys in index_meta.
const (
	metaEmbeddingModel      = "embedding_model"
	metaEmbeddingDimensions = "embedding_dimensions"
)

// checkEmbedder refuses an index whose vectors came from another embedding
// model, then records the configured model for the next open. Indexes
// written before the model was recorded are checked by vector size only.
func (s *Store) checkEmbedder(ctx context.Context) error {
	model := s.embedder.ModelName()
	dims := s.embedder.Dimensions()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	if count > 0 {
		storedModel, storedDims, err := s.storedEmbedder(ctx, dims)
		if err != nil {
			return err
		}
		modelChanged := storedModel != "" && storedModel != model
		dimsChanged := dims > 0 && storedDims > 0 && storedDims != dims
		if modelChanged || dimsChanged {
			if storedModel == "" {
				storedModel = "an unrecorded model"
			}
			return fmt.Errorf("%w: %s holds %d chunks embedded by %s (%d dimensions), "+
				"but the configured embedder is %s (%d dimensions); switch the embedding "+
				"provider back or remove the index and upload the documents again",
				domain.ErrEmbeddingMismatch, s.path, count, storedModel, storedDims, model, dims)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_meta (key, value) VALUES (?, ?), (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, metaEmbeddingModel, model, metaEmbeddingDimensions, strconv.Itoa(dims))
	if err != nil {
		return fmt.Errorf("recording embedder: %w", err)
	}
	return nil
}

// storedEmbedder returns the recorded embedder. Without a record it falls
// back to the size of any stored vector that differs from dims.
func (s *Store) storedEmbedder(ctx context.Context, dims int) (string, int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return "", 0, fmt.Errorf("reading index metadata: %w", err)
	}
	defer rows.Close()

	var model string
	var storedDims int
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", 0, fmt.Errorf("scanning index metadata: %w", err)
		}
		switch key {
		case metaEmbeddingModel:
			model = value
		case metaEmbeddingDimensions:
			storedDims, _ = strconv.Atoi(value)
		}
	}
	if err := rows.Err(); err != nil {
		return "", 0, fmt.Errorf("reading index metadata: %w", err)
	}

	if model == "" && storedDims == 0 {
		err := s.db.QueryRowContext(ctx,
			"SELECT dimensions FROM chunks WHERE dimensions != ? LIMIT 1", dims).Scan(&storedDims)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", 0, fmt.Errorf("reading vector dimensions: %w", err)
		}
		if storedDims == 0 {
			storedDims = dims
		}
	}
	return model, storedDims, nil
}

// Close closes the database connection. The embedder is owned by the caller.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// Add embeds texts and stores them with their metadata in one transaction.
func (s *Store) Add(ctx context.Context, ids, texts []string, metadatas []map[string]any) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return fmt.Errorf("%w: ids, texts and metadatas differ in length", domain.ErrInvalidInput)
	}
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: chunk %s repeated in batch", domain.ErrAlreadyExists, id)
		}
		seen[id] = struct{}{}
	}

	// Embedding is a network call for most providers; keep it outside the transaction.
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := existingIDs(ctx, tx, ids)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: chunk %s", domain.ErrAlreadyExists, existing[0])
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, text, metadata, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		metadataJSON, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		documentID := domain.MetaString(metadatas[i][domain.MetaDocumentID])

		if _, err := stmt.ExecContext(ctx, id, documentID, texts[i], string(metadataJSON),
			float32SliceToBytes(vectors[i]), len(vectors[i])); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query embeds text and returns the k nearest chunks by squared L2 distance.
func (s *Store) Query(ctx context.Context, text string, k int, filter domain.Filter) ([]domain.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, metadata, embedding FROM chunks"+where, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.VectorHit
	q := search.Float32s(query)
	for rows.Next() {
		var hit domain.VectorHit
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&hit.ID, &hit.Text, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		vector := bytesToFloat32Slice(blob)
		if len(vector) != len(query) {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrInvalidInput, hit.ID, len(vector), len(query))
		}
		if hit.Metadata, err = decodeMetadata(metadataJSON); err != nil {
			return nil, err
		}

		d := float64(q.EuclideanDistance(vector))
		hit.Distance = d * d
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Get returns every chunk matching filter, in insertion order.
func (s *Store) Get(ctx context.Context, filter domain.Filter) ([]domain.VectorRecord, error) {
	where, args := whereClause(filter)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, text, metadata FROM chunks"+where+" ORDER BY rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var records []domain.VectorRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.VectorRecord
		var metadataJSON string
		if err := rows.Scan(&rec.ID, &rec.Text, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if rec.Metadata, err = decodeMetadata(metadataJSON); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return records, nil
}

// Delete removes chunks by id.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		batch := ids[start:end]
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM chunks WHERE id IN ("+placeholders(len(batch))+")", toArgs(batch)...)
		if err != nil {
			return fmt.Errorf("deleting chunks: %w", err)
		}
	}
	return nil
}

// DeleteWhere removes every chunk matching a non-empty filter.
func (s *Store) DeleteWhere(ctx context.Context, filter domain.Filter) error {
	if len(filter) == 0 {
		return fmt.Errorf("%w: refusing to delete without a filter", domain.ErrInvalidInput)
	}
	where, args := whereClause(filter)
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks"+where, args...); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

// existingIDs returns the subset of ids already stored.
func existingIDs(ctx context.Context, tx *sql.Tx, ids []string) ([]string, error) {
	var found []string
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(ids))
		batch := ids[start:end]
		rows, err := tx.QueryContext(ctx,
			"SELECT id FROM chunks WHERE id IN ("+placeholders(len(batch))+")", toArgs(batch)...)
		if err != nil {
			return nil, fmt.Errorf("checking existing chunks: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning chunk id: %w", err)
			}
			found = append(found, id)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating chunk ids: %w", err)
		}
	}
	sort.Strings(found)
	return found, nil
}

// whereClause renders a metadata filter as SQL. document_id uses the
// indexed column; other keys are read from the metadata JSON.
func whereClause(filter domain.Filter) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	var args []any
	for _, key := range keys {
		values := filter[key]
		if len(values) == 0 {
			clauses = append(clauses, "0")
			continue
		}
		if key == domain.MetaDocumentID {
			clauses = append(clauses, "document_id IN ("+placeholders(len(values))+")")
		} else {
			clauses = append(clauses,
				"CAST(json_extract(metadata, ?) AS TEXT) IN ("+placeholders(len(values))+")")
			args = append(args, "$."+key)
		}
		args = append(args, toArgs(values)...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func decodeMetadata(raw string) (map[string]any, error) {
	meta := map[string]any{}
	if raw == "" {
		return meta, nil
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	return meta, nil
}

// float32SliceToBytes converts a float32 slice to bytes for BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return []byte{}
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes from BLOB storage to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
