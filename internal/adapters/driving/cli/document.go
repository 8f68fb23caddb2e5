package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Manage uploaded documents",
	Long:    `List, inspect, delete or resync uploaded documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentResyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Rebuild the document list from the vector index",
	Args:  cobra.NoArgs,
	RunE:  runDocumentResync,
}

var documentShowText bool

func init() {
	documentGetCmd.Flags().BoolVar(&documentShowText, "text", false, "print the document's chunks")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentResyncCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonOutput {
		if docs == nil {
			docs = []domain.Document{}
		}
		return printJSON(cmd, map[string]any{"documents": docs, "total": len(docs)})
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File: %s (%s)\n", docs[i].Filename, docs[i].FileType)
		cmd.Printf("    Status: %s, %d chunks\n", docs[i].Status, docs[i].ChunkCount)
		cmd.Printf("    Uploaded: %s\n", docs[i].CreatedAt.Local().Format("2006-01-02 15:04"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)
	doc, err := documentService.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	var chunks []domain.Chunk
	if documentShowText {
		chunks, err = documentService.Chunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to get chunks: %w", err)
		}
	}

	if jsonOutput {
		out := map[string]any{"document": doc}
		if documentShowText {
			texts := make([]string, len(chunks))
			for i := range chunks {
				texts[i] = chunks[i].Text
			}
			out["chunks"] = texts
		}
		return printJSON(cmd, out)
	}

	cmd.Printf("ID: %s\n", doc.ID)
	cmd.Printf("File: %s\n", doc.Filename)
	cmd.Printf("Type: %s\n", doc.FileType)
	cmd.Printf("Status: %s\n", doc.Status)
	cmd.Printf("Chunks: %d\n", doc.ChunkCount)
	cmd.Printf("Uploaded: %s\n", doc.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	for _, c := range chunks {
		cmd.Println()
		cmd.Printf("--- chunk %d ---\n", c.Index)
		cmd.Println(strings.TrimSpace(c.Text))
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	deleted, err := documentService.Delete(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !deleted {
		return fmt.Errorf("document not found: %s", args[0])
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func runDocumentResync(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := commandContext(cmd)
	if err := documentService.Resync(ctx); err != nil {
		return fmt.Errorf("failed to resync documents: %w", err)
	}

	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	cmd.Printf("Resynced %d documents from the vector index.\n", len(docs))
	return nil
}
