// Package pptx extracts text from PowerPoint slide decks.
package pptx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var slidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Normaliser handles PPTX documents.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedTypes returns the document types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypePPTX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise emits one "[Slide N]" block per slide that has text, in
// slide number order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening pptx: %v", domain.ErrInvalidInput, err)
	}

	slides := make([]slideFile, 0)
	for _, f := range reader.File {
		m := slidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slideFile{num: num, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	parts := make([]string, 0, len(slides))
	for i, s := range slides {
		paragraphs, err := readSlide(s.file)
		if err != nil {
			return nil, fmt.Errorf("%w: slide %d: %v", domain.ErrInvalidInput, s.num, err)
		}
		if len(paragraphs) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Slide %d]\n%s", i+1, strings.Join(paragraphs, "\n")))
	}

	return &domain.ExtractedText{
		Text:   strings.Join(parts, "\n\n"),
		Format: domain.DocumentTypePPTX,
		Metadata: map[string]any{
			"slide_count": len(slides),
		},
	}, nil
}

type slideFile struct {
	num  int
	file *zip.File
}

// readSlide returns the non-empty text paragraphs (a:p) of a slide.
func readSlide(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
