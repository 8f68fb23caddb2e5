// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// GenerativeModel produces text and images from prompts.
//
// Implementations include:
//   - Gemini (text and image)
//   - OpenAI (text and image)
//   - Anthropic (text only)
//   - Ollama (local, text only)
//
// Failures are reported as *domain.ModelInvocationError. Calls are never
// retried by implementations.
type GenerativeModel interface {
	// GenerateText answers prompt. systemInstruction may be empty.
	GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error)

	// GenerateImage renders prompt at the given aspect ratio (e.g. "16:9").
	// A nil slice with a nil error means the model returned no image;
	// callers must handle it.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error)

	// ModelName returns the name of the text model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
