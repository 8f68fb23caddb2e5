package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
)

var analyzeTask string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [doc-id]",
	Short: "Summarise a document or draw study material from it",
	Long: `Runs an analysis task over a document's text.

Tasks:
  summarize           short summary (default)
  extract_key_points  bullet list of key points
  generate_questions  practice questions`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	keywordsTopN int
	keywordsDocs []string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Show the most distinctive terms across documents",
	Args:  cobra.NoArgs,
	RunE:  runKeywords,
}

var recommendDocs []string

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest topics to visualise or ask about",
}

var recommendVisualizationCmd = &cobra.Command{
	Use:   "visualization",
	Short: "Suggest knowledge images to generate",
	Args:  cobra.NoArgs,
	RunE:  runRecommendVisualization,
}

var recommendChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Suggest questions to ask",
	Args:  cobra.NoArgs,
	RunE:  runRecommendChat,
}

var (
	visualizeStyle         string
	visualizeAspect        string
	visualizeOut           string
	visualizeFromKnowledge bool
	visualizeConcepts      []string
	visualizeNotesFile     string
)

var visualizeCmd = &cobra.Command{
	Use:   "visualize [topic]",
	Short: "Generate a knowledge image",
	Long: `Generates an image for a topic and writes it to --out.

Modes:
  default            illustrate the topic as given
  --from-knowledge   ground the image on matching document chunks
  --concepts a,b,c   concept map around the topic
  --notes-file FILE  render FILE as study notes titled by the topic

Styles: educational, diagram, mindmap, infographic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVisualize,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTask, "task", "t", string(domain.TaskSummarize), "analysis task")
	rootCmd.AddCommand(analyzeCmd)

	keywordsCmd.Flags().IntVarP(&keywordsTopN, "top", "n", 10, "number of keywords")
	keywordsCmd.Flags().StringSliceVar(&keywordsDocs, "doc", nil, "restrict to document id (repeatable)")
	rootCmd.AddCommand(keywordsCmd)

	recommendCmd.PersistentFlags().StringSliceVar(&recommendDocs, "doc", nil, "restrict to document id (repeatable)")
	recommendCmd.AddCommand(recommendVisualizationCmd)
	recommendCmd.AddCommand(recommendChatCmd)
	rootCmd.AddCommand(recommendCmd)

	visualizeCmd.Flags().StringVar(&visualizeStyle, "style", string(domain.StyleEducational), "image style")
	visualizeCmd.Flags().StringVar(&visualizeAspect, "aspect-ratio", domain.AspectLandscape, "image aspect ratio")
	visualizeCmd.Flags().StringVarP(&visualizeOut, "out", "o", "", "output file (default <topic>.<ext>)")
	visualizeCmd.Flags().BoolVar(&visualizeFromKnowledge, "from-knowledge", false, "ground the image on uploaded documents")
	visualizeCmd.Flags().StringSliceVar(&visualizeConcepts, "concepts", nil, "draw a concept map with these concepts")
	visualizeCmd.Flags().StringVar(&visualizeNotesFile, "notes-file", "", "render this file as study notes")
	visualizeCmd.MarkFlagsMutuallyExclusive("from-knowledge", "concepts", "notes-file")
	rootCmd.AddCommand(visualizeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	task := domain.AnalysisTask(analyzeTask)
	if !task.IsValid() {
		return fmt.Errorf("unknown task %q: %w", analyzeTask, domain.ErrInvalidInput)
	}

	result, err := analysisService.Analyze(commandContext(cmd), args[0], task)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document not found: %s", args[0])
		}
		return fmt.Errorf("analysis failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]any{"document_id": args[0], "task": task, "result": result})
	}
	cmd.Println(result)
	return nil
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}
	if keywordsTopN < 1 {
		return fmt.Errorf("top must be >= 1: %w", domain.ErrInvalidInput)
	}

	keywords, err := recommendationService.TrendingKeywords(commandContext(cmd), keywordsDocs, keywordsTopN)
	if err != nil {
		return fmt.Errorf("keyword extraction failed: %w", err)
	}

	if jsonOutput {
		if keywords == nil {
			keywords = []domain.Keyword{}
		}
		return printJSON(cmd, keywords)
	}

	if len(keywords) == 0 {
		cmd.Println("No keywords found.")
		return nil
	}
	for i, k := range keywords {
		cmd.Printf("  %2d. %-24s %.3f\n", i+1, k.Term, k.Score)
	}
	return nil
}

// topicSource is one of the RecommendationService topic calls.
type topicSource func(ctx context.Context, docIDs []string, history []domain.ConversationMessage) ([]domain.Topic, error)

func runRecommendVisualization(cmd *cobra.Command, _ []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}
	return runRecommend(cmd, recommendationService.VisualizationTopics)
}

func runRecommendChat(cmd *cobra.Command, _ []string) error {
	if recommendationService == nil {
		return errors.New("recommendation service not configured")
	}
	return runRecommend(cmd, recommendationService.ChatTopics)
}

func runRecommend(cmd *cobra.Command, source topicSource) error {
	topics, err := source(commandContext(cmd), recommendDocs, nil)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]any{"topics": topics})
	}

	for i, t := range topics {
		cmd.Printf("  [%d] %s (%s)\n", i+1, t.Title, t.Type)
		if t.Description != "" {
			cmd.Printf("      %s\n", t.Description)
		}
		cmd.Printf("      > %s\n", t.Prompt)
		cmd.Println()
	}
	return nil
}

func runVisualize(cmd *cobra.Command, args []string) error {
	if visualizationService == nil {
		return errors.New("visualization service not configured")
	}

	topic := strings.TrimSpace(strings.Join(args, " "))
	style := domain.VisualizationStyle(visualizeStyle)
	if !style.IsValid() {
		return fmt.Errorf("unknown style %q: %w", visualizeStyle, domain.ErrInvalidInput)
	}
	if !domain.ValidAspectRatio(visualizeAspect) {
		return fmt.Errorf("unsupported aspect ratio %q: %w", visualizeAspect, domain.ErrInvalidInput)
	}

	ctx := commandContext(cmd)
	var (
		img *domain.Image
		err error
	)
	switch {
	case visualizeFromKnowledge:
		img, err = visualizationService.FromKnowledge(ctx, topic, style, visualizeAspect)
	case len(visualizeConcepts) > 0:
		img, err = visualizationService.ConceptMap(ctx, topic, visualizeConcepts, visualizeAspect)
	case visualizeNotesFile != "":
		content, readErr := os.ReadFile(visualizeNotesFile)
		if readErr != nil {
			return fmt.Errorf("read notes: %w", readErr)
		}
		img, err = visualizationService.StudyNotes(ctx, topic, string(content), visualizeAspect)
	default:
		img, err = visualizationService.Visualize(ctx, driving.VisualizationRequest{
			Topic:       topic,
			Style:       style,
			AspectRatio: visualizeAspect,
		})
	}
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if img == nil || len(img.Data) == 0 {
		return domain.ErrNoImage
	}

	out := visualizeOut
	if out == "" {
		out = imageFilename(topic, img.MIMEType)
	}
	if err := os.WriteFile(out, img.Data, 0o600); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]any{"file": out, "mime_type": img.MIMEType, "description": img.Description})
	}
	cmd.Printf("Saved %s\n", out)
	if img.Description != "" {
		cmd.Println(img.Description)
	}
	return nil
}

// imageFilename derives a safe file name from the topic and MIME type.
func imageFilename(topic, mimeType string) string {
	name := strings.Map(func(r rune) rune {
		if r == filepath.Separator || r == '/' || r == ':' || r == ' ' {
			return '_'
		}
		return r
	}, domain.Clip(topic, 40))
	if name == "" {
		name = "visualization"
	}

	ext := ".png"
	switch mimeType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return name + ext
}
