// Package chunker provides a boundary-seeking text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators are tried in order when looking for a place to end a chunk.
var separators = [][]rune{
	[]rune("。"),
	[]rune("."),
	[]rune("!\n"),
	[]rune("?\n"),
	[]rune("\n\n"),
}

// Processor splits document text into overlapping chunks that prefer to
// end on sentence or paragraph boundaries.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	now       func() time.Time
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithClock overrides the timestamp source for created chunks.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a new chunker processor with the given options.
// The size must be positive and the overlap must be in [0, size).
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, p.chunkSize)
	}
	if p.overlap < 0 || p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidInput, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits text into chunks owned by doc.
// Input chunks are ignored; this processor creates new chunks from the text.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, text string, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts := p.Split(text)
	if len(parts) == 0 {
		return nil, nil
	}

	created := p.now().UTC()
	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			FileType:   doc.FileType,
			Index:      i,
			Text:       part,
			CreatedAt:  created,
		})
	}

	return chunks, nil
}

// Split divides text into trimmed, non-empty chunks.
//
// Windows are chunkSize characters long. Within a window the last
// separator that starts past the window's midpoint ends the chunk;
// otherwise the chunk is cut at the window boundary. Each following
// window starts overlap characters before the previous end.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	runes := []rune(text)
	n := len(runes)
	if n <= p.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	chunks := make([]string, 0, n/(p.chunkSize-p.overlap)+1)
	start := 0

	for start < n {
		end := start + p.chunkSize
		if end < n {
			end = p.boundary(runes, start, end)
		} else {
			end = n
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= n {
			break
		}

		next := end - p.overlap
		if next <= start {
			// A separator close to the midpoint with a large overlap
			// would move backwards.
			next = end
		}
		start = next
	}

	return chunks
}

// boundary returns where the window [start, end) should be cut.
func (p *Processor) boundary(runes []rune, start, end int) int {
	mid := start + p.chunkSize/2
	for _, sep := range separators {
		pos := lastIndex(runes[start:end], sep)
		if pos < 0 {
			continue
		}
		if start+pos > mid {
			return start + pos + len(sep)
		}
	}
	return end
}

// lastIndex returns the index of the last occurrence of sep in s, or -1.
func lastIndex(s, sep []rune) int {
	for i := len(s) - len(sep); i >= 0; i-- {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
