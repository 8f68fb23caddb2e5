// Package plaintext decodes text files in UTF-8 or a legacy encoding.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Candidate is an encoding tried when decoding a text file.
type Candidate struct {
	Name     string
	Encoding encoding.Encoding // nil means UTF-8
}

// DefaultCandidates are tried in order. Latin-1 maps every byte, so it
// always succeeds when reached.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Name: "utf-8"},
		{Name: "gbk", Encoding: simplifiedchinese.GBK},
		{Name: "gb18030", Encoding: simplifiedchinese.GB18030},
		{Name: "latin-1", Encoding: charmap.ISO8859_1},
	}
}

// Normaliser handles plain text documents.
type Normaliser struct {
	candidates []Candidate
}

// New creates a plain text normaliser with the default candidates.
func New() *Normaliser {
	return &Normaliser{candidates: DefaultCandidates()}
}

// NewWithCandidates creates a normaliser trying only the given encodings.
func NewWithCandidates(candidates []Candidate) *Normaliser {
	return &Normaliser{candidates: candidates}
}

// SupportedTypes returns the document types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypeTXT}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise decodes the content with the first candidate that yields
// clean text. Decoders that had to substitute U+FFFD are rejected.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	tried := make([]string, 0, len(n.candidates))
	for _, c := range n.candidates {
		tried = append(tried, c.Name)
		text, ok := decode(raw.Content, c.Encoding)
		if !ok {
			continue
		}
		return &domain.ExtractedText{
			Text:   text,
			Format: domain.DocumentTypeTXT,
			Metadata: map[string]any{
				"char_count": utf8.RuneCountInString(text),
				"encoding":   c.Name,
			},
		}, nil
	}
	return nil, &domain.DecodeError{Tried: tried}
}

// decode reports whether content is valid in enc.
func decode(content []byte, enc encoding.Encoding) (string, bool) {
	if enc == nil {
		if !utf8.Valid(content) {
			return "", false
		}
		return string(content), true
	}

	out, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", false
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
