// Package docx extracts text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedTypes returns the document types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypeDOCX}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts non-empty body paragraphs followed by table rows.
// Cells of a row are joined with " | ".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx: %v", domain.ErrInvalidInput, err)
	}

	content, err := readDocumentXML(reader)
	if err != nil {
		return nil, err
	}

	var doc documentXML
	if len(content) > 0 {
		if err := xml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("%w: parsing word/document.xml: %v", domain.ErrInvalidInput, err)
		}
	}

	parts := make([]string, 0, len(doc.Body.Paragraphs))
	for _, p := range doc.Body.Paragraphs {
		if text := p.text(); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				if text := cell.text(); strings.TrimSpace(text) != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, " | "))
			}
		}
	}

	return &domain.ExtractedText{
		Text:   strings.Join(parts, "\n\n"),
		Format: domain.DocumentTypeDOCX,
		Metadata: map[string]any{
			"paragraph_count": len(doc.Body.Paragraphs),
		},
	}, nil
}

// readDocumentXML returns the contents of word/document.xml, or nil when
// the archive has none.
func readDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening word/document.xml: %v", domain.ErrInvalidInput, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: reading word/document.xml: %v", domain.ErrInvalidInput, err)
		}
		return content, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
// Only body-level paragraphs are counted; table paragraphs belong to cells.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type table struct {
	Rows []struct {
		Cells []cell `xml:"tc"`
	} `xml:"tr"`
}

type cell struct {
	Paragraphs []paragraph `xml:"p"`
}

func (c cell) text() string {
	lines := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		if t := p.text(); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

type paragraph struct {
	Runs       []run `xml:"r"`
	Hyperlinks []struct {
		Runs []run `xml:"r"`
	} `xml:"hyperlink"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func (p paragraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			sb.WriteString(t.Content)
		}
	}
	for _, h := range p.Hyperlinks {
		for _, r := range h.Runs {
			for _, t := range r.Text {
				sb.WriteString(t.Content)
			}
		}
	}
	return sb.String()
}
