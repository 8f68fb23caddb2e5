// Command studybuddy indexes study material and answers questions from it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/ai"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/config/file"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driven/storage/uploads"
	"github.com/Arlieeee/StudyBuddy-AI/internal/adapters/driving/cli"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/services"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
	"github.com/Arlieeee/StudyBuddy-AI/internal/normalisers"
	"github.com/Arlieeee/StudyBuddy-AI/internal/postprocessors"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrapper(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func openConfigStore(path string) (*file.ConfigStore, error) {
	if path != "" {
		return file.NewConfigStoreAt(path)
	}
	return file.NewConfigStore("")
}

// bootstrap opens the settings and, unless only settings are needed, the
// index, models and services behind every command.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, func(), error) {
	store, err := openConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService, Server: settings.Server}, func() {}, nil
	}

	if err := settingsService.Validate(); err != nil {
		return nil, nil, err
	}

	logger.Debug("Opening %s index", settings.Index.Backend)
	backends, err := ai.Initialise(ctx, settings, false)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range backends.Warnings {
		logger.Warn("%s", w)
	}

	uploadStore, err := uploads.NewStore(settings.Storage.UploadDir)
	if err != nil {
		backends.Close()
		return nil, nil, err
	}

	pipeline, err := postprocessors.BuildPipeline(
		postprocessors.NewDefaultRegistry(), domain.PipelineConfigFor(settings.RAG))
	if err != nil {
		backends.Close()
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		backends.Close()
		return nil, nil, err
	}

	app, err := services.NewApp(ctx, services.AppConfig{
		Index:     backends.VectorIndex,
		Model:     backends.Model,
		Extractor: normalisers.Default(),
		Pipeline:  pipeline,
		Uploads:   uploadStore,
		Prompts:   prompts,
		TopK:      settings.RAG.TopK,
	})
	if err != nil {
		backends.Close()
		return nil, nil, err
	}
	logger.Info("Loaded %d documents", app.Registry.Len())

	closer := func() {
		if err := app.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
		if backends.EmbeddingService != nil {
			backends.EmbeddingService.Close()
		}
	}

	return &cli.Services{
		Documents:       app.Documents,
		Search:          app.Search,
		Answers:         app.Answers,
		Visualization:   app.Visualization,
		Recommendations: app.Recommendations,
		Analysis:        app.Analysis,
		Settings:        settingsService,
		Server:          settings.Server,
		InboxDir:        filepath.Join(filepath.Dir(settings.Storage.UploadDir), "inbox"),
	}, closer, nil
}
