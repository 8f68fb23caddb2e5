package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload study documents",
	Long: `Extracts, chunks and indexes one or more documents.

Supported formats: .pdf, .pptx, .docx, .txt
Files are processed in order; a failure is reported and the rest continue.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)
	var uploaded []domain.Document
	failed := 0

	for _, path := range args {
		doc, err := uploadFile(cmd, path)
		if err != nil {
			failed++
			cmd.PrintErrf("%s: %v\n", path, err)
			continue
		}
		uploaded = append(uploaded, *doc)
		if !jsonOutput {
			cmd.Printf("Uploaded %s\n", doc.Filename)
			cmd.Printf("  ID: %s\n", doc.ID)
			cmd.Printf("  Chunks: %d\n", doc.ChunkCount)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if jsonOutput {
		if uploaded == nil {
			uploaded = []domain.Document{}
		}
		if err := printJSON(cmd, uploaded); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func uploadFile(cmd *cobra.Command, path string) (*domain.Document, error) {
	// Check the format before reading the file.
	if _, err := domain.DocumentTypeFromFilename(path); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return documentService.Ingest(commandContext(cmd), content, filepath.Base(path))
}
