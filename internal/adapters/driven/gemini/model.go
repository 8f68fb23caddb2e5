package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure GenerativeModel implements the interface.
var _ driven.GenerativeModel = (*GenerativeModel)(nil)

// GenerativeModel produces text and images with Gemini models.
type GenerativeModel struct {
	client     *genai.Client
	model      string
	imageModel string
}

// NewGenerativeModel creates a new Gemini generative model client.
func NewGenerativeModel(ctx context.Context, cfg Config) (*GenerativeModel, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultTextModel
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}
	return &GenerativeModel{
		client:     client,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

// GenerateText sends a single-turn prompt with an optional system instruction.
func (m *GenerativeModel) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	// Handles carry per-request settings, so each call gets its own.
	gm := m.client.GenerativeModel(modelPath(m.model))
	if systemInstruction != "" {
		gm.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapError("generate text", err)
	}

	text, _ := collectParts(resp)
	if text == "" {
		return "", wrapError("generate text", emptyResponseError(resp))
	}
	return text, nil
}

// GenerateImage asks the image model for a picture. The aspect ratio is
// carried in the prompt so it works across image model versions.
func (m *GenerativeModel) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if m.imageModel == "" {
		return nil, fmt.Errorf("%w: no image model configured", domain.ErrLLMUnavailable)
	}
	if aspectRatio != "" {
		prompt = fmt.Sprintf("%s\n\nAspect ratio: %s", prompt, aspectRatio)
	}

	resp, err := m.client.GenerativeModel(modelPath(m.imageModel)).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, wrapError("generate image", err)
	}

	_, image := collectParts(resp)
	if image == nil {
		return nil, nil
	}
	return image.Data, nil
}

// ModelName returns the name of the text model being used.
func (m *GenerativeModel) ModelName() string {
	return m.model
}

// Ping fetches the text model description.
func (m *GenerativeModel) Ping(ctx context.Context) error {
	if _, err := m.client.GenerativeModel(modelPath(m.model)).Info(ctx); err != nil {
		return wrapError("ping", err)
	}
	return nil
}

// Close releases the underlying client.
func (m *GenerativeModel) Close() error {
	return m.client.Close()
}

// collectParts joins the text of the first candidate and returns its
// first inline image, if any. The client has already base64-decoded
// inline data.
func collectParts(resp *genai.GenerateContentResponse) (string, *genai.Blob) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	var image *genai.Blob
	for _, p := range resp.Candidates[0].Content.Parts {
		switch part := p.(type) {
		case genai.Text:
			sb.WriteString(string(part))
		case genai.Blob:
			if image == nil && len(part.Data) > 0 && strings.HasPrefix(part.MIMEType, "image/") {
				image = &part
			}
		}
	}
	return sb.String(), image
}

func emptyResponseError(resp *genai.GenerateContentResponse) error {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
		return fmt.Errorf("empty response (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return fmt.Errorf("empty response")
}
