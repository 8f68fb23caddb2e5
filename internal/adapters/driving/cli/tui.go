package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for StudyBuddy.

Search your material, ask questions and browse uploaded documents
with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Ask / Open
  Esc      - Back
  d        - Delete document
  ?        - Toggle help
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the installed services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Search:    searchService,
		Answers:   answerService,
		Documents: documentService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if searchService == nil || documentService == nil {
		return errors.New("search and document services not configured")
	}

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
