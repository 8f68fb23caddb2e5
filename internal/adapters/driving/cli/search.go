package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

var (
	searchTopK int
	searchDocs []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search uploaded documents",
	Long: `Performs semantic search across the chunks of every uploaded document.
Use --doc to restrict results to specific documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().StringSliceVar(&searchDocs, "doc", nil, "restrict to document id (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	if searchTopK < 0 {
		return fmt.Errorf("top-k must be >= 0: %w", domain.ErrInvalidInput)
	}

	query := strings.Join(args, " ")
	results, err := searchService.Search(commandContext(cmd), query, domain.SearchOptions{
		TopK:        searchTopK,
		DocumentIDs: searchDocs,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		if results == nil {
			results = []domain.SearchResult{}
		}
		return printJSON(cmd, map[string]any{"query": query, "results": results, "total": len(results)})
	}

	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] filename #chunk (score)
		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, results[i].Filename, results[i].ChunkIndex, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Text))
		cmd.Println()
	}
	return nil
}

// snippet flattens text onto one line for table output.
func snippet(text string) string {
	return domain.Truncate(strings.Join(strings.Fields(text), " "), 160)
}
