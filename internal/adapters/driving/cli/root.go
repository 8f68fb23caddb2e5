// Package cli provides the studybuddy command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driving"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Global flags.
var (
	verbose    bool
	configPath string
	jsonOutput bool
)

// Services used by commands. Populated by SetServices.
var (
	documentService       driving.DocumentService
	searchService         driving.SearchService
	answerService         driving.AnswerService
	visualizationService  driving.VisualizationService
	recommendationService driving.RecommendationService
	analysisService       driving.AnalysisService
	settingsService       driving.SettingsService
	serverSettings        = domain.DefaultAppSettings().Server
	inboxDir              string
)

// Services bundles everything the commands need.
type Services struct {
	Documents       driving.DocumentService
	Search          driving.SearchService
	Answers         driving.AnswerService
	Visualization   driving.VisualizationService
	Recommendations driving.RecommendationService
	Analysis        driving.AnalysisService
	Settings        driving.SettingsService

	// Server holds the HTTP listen address and CORS origins.
	Server domain.ServerSettings

	// InboxDir is watched by "serve --watch" when no directory is given.
	InboxDir string
}

// SetServices installs the services used by every command.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	documentService = s.Documents
	searchService = s.Search
	answerService = s.Answers
	visualizationService = s.Visualization
	recommendationService = s.Recommendations
	analysisService = s.Analysis
	settingsService = s.Settings
	if s.Server.Addr != "" {
		serverSettings = s.Server
	}
	inboxDir = s.InboxDir
}

// BootstrapOptions tells the bootstrapper how much of the application to open.
type BootstrapOptions struct {
	// ConfigPath overrides the config file location.
	ConfigPath string

	// SettingsOnly skips the index and models; only Settings is required.
	SettingsOnly bool
}

// Bootstrapper opens the application and returns its services with a
// function that releases them.
type Bootstrapper func(ctx context.Context, opts BootstrapOptions) (*Services, func(), error)

var (
	bootstrapper Bootstrapper
	closeFn      func()
)

// SetBootstrapper registers how commands open the application.
func SetBootstrapper(b Bootstrapper) {
	bootstrapper = b
}

// Command annotations controlling bootstrap.
const (
	bootstrapAnnotation = "studybuddy/bootstrap"
	bootstrapNone       = "none"
	bootstrapSettings   = "settings"
)

var rootCmd = &cobra.Command{
	Use:   "studybuddy",
	Short: "Study assistant with grounded answers from your own material",
	Long: `StudyBuddy indexes your lecture notes, slides and papers and answers
questions using only what you uploaded, with sources.

Supported formats: .pdf, .pptx, .docx, .txt`,
	SilenceUsage:      true,
	PersistentPreRunE: bootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.studybuddy/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
}

// bootstrap opens the application once, unless the command needs nothing
// or services were installed already.
func bootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	mode := bootstrapMode(cmd)
	if mode == bootstrapNone {
		return nil
	}
	settingsOnly := mode == bootstrapSettings

	if settingsOnly && settingsService != nil {
		return nil
	}
	if !settingsOnly && documentService != nil {
		return nil
	}
	if bootstrapper == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Section("Bootstrap")
	svc, closer, err := bootstrapper(ctx, BootstrapOptions{ConfigPath: configPath, SettingsOnly: settingsOnly})
	if err != nil {
		return fmt.Errorf("start studybuddy: %w", err)
	}
	SetServices(svc)
	closeFn = closer
	return nil
}

// bootstrapMode returns the nearest bootstrap annotation up the command tree.
func bootstrapMode(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if mode, ok := c.Annotations[bootstrapAnnotation]; ok {
			return mode
		}
	}
	return ""
}

// Execute runs the root command and releases whatever bootstrap opened.
func Execute(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

func closeServices() {
	if closeFn != nil {
		closeFn()
		closeFn = nil
	}
}

// commandContext returns the command's context, or Background in tests.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
