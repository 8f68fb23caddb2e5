// Package pdf extracts text from PDF documents with docconv.
//
// docconv shells out to pdftotext from poppler-utils, which separates
// pages with a form feed. Each page with text becomes a "[Page N]" block.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"code.sajari.com/docconv/v2"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils to upload PDF files")

// Converter turns PDF bytes into text and document metadata.
type Converter func(r io.Reader) (string, map[string]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	convert   Converter
	checkTool bool
}

// New creates a PDF normaliser backed by docconv.ConvertPDF.
func New() *Normaliser {
	return &Normaliser{convert: docconv.ConvertPDF, checkTool: true}
}

// NewWithConverter creates a normaliser with a custom converter.
func NewWithConverter(convert Converter) *Normaliser {
	return &Normaliser{convert: convert}
}

// CheckAvailable verifies pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext (poppler):
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}

// SupportedTypes returns the document types this normaliser handles.
func (n *Normaliser) SupportedTypes() []domain.DocumentType {
	return []domain.DocumentType{domain.DocumentTypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if n.checkTool {
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
	}

	body, _, err := n.convert(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("converting pdf: %w", err)
	}

	pages := splitPages(body)
	parts := make([]string, 0, len(pages))
	for i, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("[Page %d]\n%s", i+1, page))
	}

	return &domain.ExtractedText{
		Text:   strings.Join(parts, "\n\n"),
		Format: domain.DocumentTypePDF,
		Metadata: map[string]any{
			"page_count": len(pages),
		},
	}, nil
}

// splitPages splits converter output on form feeds. pdftotext ends the
// last page with a form feed too, so a trailing empty segment is dropped.
func splitPages(body string) []string {
	if body == "" {
		return nil
	}
	pages := strings.Split(body, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
