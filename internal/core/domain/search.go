package domain

import (
	"fmt"
	"strconv"
	"time"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// TopK is the maximum number of results. Zero means the configured default.
	TopK int

	// DocumentIDs restricts results to chunks of these documents.
	// Empty means the whole index is searched.
	DocumentIDs []string
}

// SearchResult is a single ranked chunk. It is never persisted.
type SearchResult struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// DocumentID is the owning document.
	DocumentID string `json:"document_id"`

	// Filename is the owning document's filename.
	Filename string `json:"filename"`

	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int `json:"chunk_index"`

	// Score is the relevance in [0,1], higher is more similar.
	Score float64 `json:"relevance_score"`
}

// ScoreFromDistance maps a non-negative distance onto (0,1].
// Identical vectors score 1 and larger distances approach 0.
func ScoreFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1.0 / (1.0 + distance)
}

// SourceTextLimit is the maximum number of characters of chunk text
// carried in a SourceReference.
const SourceTextLimit = 200

// SourceReference attributes part of an answer to a retrieved chunk.
type SourceReference struct {
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	ChunkText      string  `json:"chunk_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewSourceReference builds a display-safe reference from a result.
func NewSourceReference(r SearchResult) SourceReference {
	return SourceReference{
		DocumentID:     r.DocumentID,
		DocumentName:   r.Filename,
		ChunkText:      Truncate(r.Text, SourceTextLimit),
		RelevanceScore: r.Score,
	}
}

// Truncate cuts s to at most limit runes and appends "..." when it was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Clip cuts s to at most limit runes without a marker.
func Clip(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// NoInformationAnswer is returned when retrieval finds nothing to ground on.
const NoInformationAnswer = "Sorry, I could not find any relevant information in the knowledge base. " +
	"Please make sure the related documents have been uploaded."

// Answer is a grounded response with its sources in rank order.
type Answer struct {
	Answer  string            `json:"answer"`
	Sources []SourceReference `json:"sources"`
}

// Filter is an equality / set-membership filter over chunk metadata.
// Each key must match one of its values. An empty filter matches everything.
type Filter map[string][]string

// DocumentFilter returns a filter restricted to the given document ids,
// or nil when ids is empty.
func DocumentFilter(ids ...string) Filter {
	if len(ids) == 0 {
		return nil
	}
	return Filter{MetaDocumentID: ids}
}

// Matches reports whether metadata satisfies every clause of the filter.
func (f Filter) Matches(meta map[string]any) bool {
	for key, values := range f {
		got, ok := meta[key]
		if !ok {
			return false
		}
		s := MetaString(got)
		found := false
		for _, v := range values {
			if v == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// VectorHit is a raw match from the vector index.
type VectorHit struct {
	ID       string
	Text     string
	Metadata map[string]any

	// Distance is the squared L2 distance to the query, lower is closer.
	Distance float64
}

// VectorRecord is a stored chunk as returned by a metadata scan.
type VectorRecord struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// ToSearchResult converts a hit into a scored result.
func (h VectorHit) ToSearchResult() SearchResult {
	return SearchResult{
		Text:       h.Text,
		DocumentID: MetaString(h.Metadata[MetaDocumentID]),
		Filename:   metaStringOr(h.Metadata[MetaFilename], "Unknown"),
		ChunkIndex: MetaInt(h.Metadata[MetaChunkIndex]),
		Score:      ScoreFromDistance(h.Distance),
	}
}

// MetaString renders a metadata value as a string.
func MetaString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func metaStringOr(v any, fallback string) string {
	if s := MetaString(v); s != "" {
		return s
	}
	return fallback
}

// MetaInt reads a numeric metadata value, tolerating the representations
// produced by JSON decoding and the different index backends.
func MetaInt(v any) int {
	switch val := v.(type) {
	case int:
		return val
	case int32:
		return int(val)
	case int64:
		return int(val)
	case float32:
		return int(val)
	case float64:
		return int(val)
	case string:
		n, _ := strconv.Atoi(val)
		return n
	default:
		return 0
	}
}

// MetaTime parses the created_at metadata value. Unparseable values
// yield the fallback.
func MetaTime(v any, fallback time.Time) time.Time {
	s := MetaString(v)
	if s == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
