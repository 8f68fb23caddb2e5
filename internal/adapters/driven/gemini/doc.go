// Package gemini adapts the Google Generative Language API to the
// EmbeddingService and GenerativeModel ports.
//
// Both adapters share one API-key authenticated client per instance:
//
//	emb, err := gemini.NewEmbeddingService(ctx, gemini.Config{APIKey: key})
//	llm, err := gemini.NewGenerativeModel(ctx, gemini.Config{APIKey: key})
//
// Google API errors (401, 403, 404, 429) are mapped onto domain errors by
// wrapError so callers can test them with errors.Is.
package gemini
