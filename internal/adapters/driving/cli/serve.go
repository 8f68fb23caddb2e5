package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/httpapi"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/watcher"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

var (
	serveAddr  string
	serveWatch string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API used by the StudyBuddy web front end.

With --watch, files dropped into the inbox directory are uploaded
automatically. Pass a directory to watch somewhere other than the inbox.

Examples:
  studybuddy serve
  studybuddy serve --addr :9000 --watch
  studybuddy serve --watch ~/lectures`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "watch a directory and upload new files")
	serveCmd.Flags().Lookup("watch").NoOptDefVal = "-"
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if documentService == nil || searchService == nil {
		return errors.New("document service not configured")
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Documents:       documentService,
		Search:          searchService,
		Answers:         answerService,
		Visualization:   visualizationService,
		Recommendations: recommendationService,
		Analysis:        analysisService,
	}, httpapi.WithCORSOrigins(serverSettings.CORSOrigins), httpapi.WithLogger(logger.Structured()))
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	if dir := watchDir(); dir != "" {
		w := watcher.New(dir, documentService, watcher.WithOnIngest(func(doc domain.Document) {
			cmd.Printf("Uploaded %s (%d chunks)\n", doc.Filename, doc.ChunkCount)
		}))
		if err := w.Watch(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		cmd.Printf("Watching %s for new documents\n", dir)
	}

	addr := serveAddr
	if addr == "" {
		addr = serverSettings.Addr
	}
	cmd.Printf("StudyBuddy API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// watchDir resolves the --watch flag. A bare --watch means the inbox.
func watchDir() string {
	switch serveWatch {
	case "":
		return ""
	case "-":
		return inboxDir
	default:
		return serveWatch
	}
}
