package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Default model names.
const (
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultTextModel      = "gemini-3-flash-preview"
	DefaultImageModel     = "gemini-3-pro-image-preview"
)

// Config holds configuration shared by the Gemini adapters.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the embedding or text model name.
	Model string

	// ImageModel is the image model name. Empty disables image output.
	ImageModel string

	// Endpoint overrides the API base URL. Used by tests.
	Endpoint string
}

// newClient creates an API-key authenticated Generative Language client.
func newClient(ctx context.Context, cfg Config) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		// REST calls append "/v1beta/..." to the endpoint path.
		opts = append(opts, option.WithEndpoint(strings.TrimSuffix(cfg.Endpoint, "/")))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return client, nil
}

// modelPath returns the resource name the API expects ("models/{name}").
func modelPath(name string) string {
	if strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name
}
