package services

import (
	"context"
	"errors"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
	"github.com/Arlieeee/StudyBuddy-AI/internal/logger"
)

// AppConfig holds the driven adapters an App is assembled from.
// Index is required. A nil Model disables ask and generation.
type AppConfig struct {
	Index     driven.VectorIndex
	Model     driven.GenerativeModel
	Extractor driven.TextExtractor
	Pipeline  driven.PostProcessorPipeline
	Uploads   driven.UploadStore
	Prompts   driven.PromptStore

	// TopK is the default number of search results.
	TopK int
}

// App owns the registry and every service built on it. Construction
// rebuilds the registry from the index before any service is usable.
type App struct {
	Registry        *Registry
	Documents       *DocumentService
	Search          *SearchService
	Answers         *AnswerService
	Visualization   *VisualizationService
	Recommendations *RecommendationService
	Analysis        *AnalysisService

	index driven.VectorIndex
	model driven.GenerativeModel
}

// NewApp opens the application over cfg. A failed registry rebuild is
// logged and leaves the registry empty.
func NewApp(ctx context.Context, cfg AppConfig) (*App, error) {
	if cfg.Index == nil {
		return nil, errors.New("vector index is required")
	}

	registry := NewRegistry()
	if err := registry.Rebuild(ctx, cfg.Index); err == nil {
		logger.Debug("Registry rebuilt with %d documents", registry.Len())
	}

	search := NewSearchService(cfg.Index, cfg.TopK)
	documents := NewDocumentService(registry, cfg.Extractor, cfg.Pipeline, cfg.Index, cfg.Uploads)

	app := &App{
		Registry:        registry,
		Documents:       documents,
		Search:          search,
		Answers:         NewAnswerService(search, cfg.Model),
		Visualization:   NewVisualizationService(cfg.Model, search),
		Recommendations: NewRecommendationService(registry, search, cfg.Index, cfg.Model),
		Analysis:        NewAnalysisService(documents, cfg.Model),
		index:           cfg.Index,
		model:           cfg.Model,
	}

	if cfg.Prompts != nil {
		for _, svc := range []driven.PromptStoreAware{
			app.Answers, app.Visualization, app.Recommendations, app.Analysis,
		} {
			svc.SetPromptStore(cfg.Prompts)
		}
	}

	return app, nil
}

// HasModel reports whether a generative model is configured.
func (a *App) HasModel() bool {
	return a.model != nil
}

// Close releases the model and the index.
func (a *App) Close() error {
	var errs []error
	if a.model != nil {
		errs = append(errs, a.model.Close())
	}
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	return errors.Join(errs...)
}
