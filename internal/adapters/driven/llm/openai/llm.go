// Package openai provides a generative model adapter using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.GenerativeModel = (*Model)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultImageModel = "gpt-image-1"
	DefaultLLMTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI generative model.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// ImageModel is the image model. Empty disables image output.
	ImageModel string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Model produces text with chat completions and images with the images API.
type Model struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	imageModel string
}

type chatCompletionRequest struct {
	Model    string              `json:"model"`
	Messages []chatCompletionMsg `json:"messages"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewModel creates a new OpenAI generative model.
func NewModel(cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &Model{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

// GenerateText runs a chat completion with an optional system message.
func (m *Model) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	messages := make([]chatCompletionMsg, 0, 2)
	if systemInstruction != "" {
		messages = append(messages, chatCompletionMsg{Role: "system", Content: systemInstruction})
	}
	messages = append(messages, chatCompletionMsg{Role: "user", Content: prompt})

	var resp chatCompletionResponse
	if err := m.post(ctx, "/chat/completions", chatCompletionRequest{Model: m.model, Messages: messages}, &resp); err != nil {
		return "", m.fail("generate text", err)
	}
	if resp.Error != nil {
		return "", m.fail("generate text", fmt.Errorf("%s", resp.Error.Message))
	}
	if len(resp.Choices) == 0 {
		return "", m.fail("generate text", fmt.Errorf("no response choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage renders prompt with the images API at the size closest
// to aspectRatio.
func (m *Model) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	if m.imageModel == "" {
		return nil, fmt.Errorf("%w: no image model configured", domain.ErrLLMUnavailable)
	}

	req := imageRequest{
		Model:  m.imageModel,
		Prompt: prompt,
		Size:   imageSize(aspectRatio),
		N:      1,
	}
	var resp imageResponse
	if err := m.post(ctx, "/images/generations", req, &resp); err != nil {
		return nil, m.fail("generate image", err)
	}
	if resp.Error != nil {
		return nil, m.fail("generate image", fmt.Errorf("%s", resp.Error.Message))
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, m.fail("generate image", fmt.Errorf("decoding image: %w", err))
	}
	return data, nil
}

// imageSize maps an aspect ratio onto the sizes the images API accepts.
func imageSize(aspectRatio string) string {
	var w, h int
	if _, err := fmt.Sscanf(aspectRatio, "%d:%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return "1024x1024"
	}
	switch {
	case w > h:
		return "1536x1024"
	case h > w:
		return "1024x1536"
	default:
		return "1024x1024"
	}
}

// post sends a JSON request and decodes the JSON response into out.
// Non-2xx responses without a decodable error body become errors.
func (m *Model) post(ctx context.Context, path string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// ModelName returns the name of the chat model being used.
func (m *Model) ModelName() string {
	return m.model
}

// Ping validates the API key against the /models endpoint without running inference.
func (m *Model) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return m.fail("ping", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return m.fail("ping", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}

// Close releases resources.
func (m *Model) Close() error {
	return nil
}

func (m *Model) fail(op string, err error) error {
	return &domain.ModelInvocationError{Provider: "openai", Op: op, Err: err}
}
