// Package hashing provides an offline embedding service based on feature hashing.
//
// Each token (a lower-cased word, or a single Han/Kana/Hangul character plus
// the bigram it starts) is hashed into one of a fixed number of buckets with
// a sign taken from the hash, and the resulting vector is L2-normalised.
// Texts sharing vocabulary land close together, which is enough for local
// use and for tests; it carries no semantics beyond word overlap.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size of the default model.
const DefaultDimensions = 256

// EmbeddingService embeds text by feature hashing. It is safe for concurrent use.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hashing embedder with the given vector size.
// Non-positive sizes use DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float64, s.dimensions)
	for _, tok := range Tokens(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		bucket := int(sum % uint64(s.dimensions))
		if sum&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, s.dimensions)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in turn.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model name, e.g. "hashing-256".
func (s *EmbeddingService) ModelName() string {
	if s.dimensions == DefaultDimensions {
		return domain.DefaultEmbeddingModels()[domain.AIProviderHashing]
	}
	return "hashing-" + strconv.Itoa(s.dimensions)
}

// Ping always succeeds; the embedder has no remote dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Tokens splits text into hashing features. Latin-script words are
// lower-cased; ideographic runs become unigrams plus bigrams.
func Tokens(text string) []string {
	var tokens []string
	var word strings.Builder
	var prev rune

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isIdeographic(r):
			flush()
			tokens = append(tokens, string(r))
			if prev != 0 {
				tokens = append(tokens, string([]rune{prev, r}))
			}
			prev = r
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
		prev = 0
	}
	flush()
	return tokens
}

func isIdeographic(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r)
}
