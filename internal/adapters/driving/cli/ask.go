package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
)

var askDocs []string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your study material",
	Long: `Answers a question using only the uploaded documents and lists
the chunks the answer was grounded on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVar(&askDocs, "doc", nil, "restrict to document id (repeatable)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question must not be empty: %w", domain.ErrInvalidInput)
	}

	answer, err := answerService.Ask(commandContext(cmd), question, askDocs)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if jsonOutput {
		if answer.Sources == nil {
			answer.Sources = []domain.SourceReference{}
		}
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.DocumentName, src.RelevanceScore)
		cmd.Printf("      %s\n", snippet(src.ChunkText))
	}
	return nil
}
