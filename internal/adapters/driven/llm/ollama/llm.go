// Package ollama provides a text-only generative model adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Model implements the interface.
var _ driven.GenerativeModel = (*Model)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 300 * time.Second
)

// Config holds configuration for the Ollama model.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 300s, local models are slow).
	Timeout time.Duration
}

// Model generates text with a local Ollama model via /api/chat.
type Model struct {
	client  *http.Client
	baseURL string
	model   string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// NewModel creates a new Ollama model client.
func NewModel(cfg Config) *Model {
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
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// GenerateText runs a non-streaming chat with an optional system message.
func (m *Model) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if systemInstruction != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemInstruction})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	jsonBody, err := json.Marshal(chatRequest{Model: m.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", m.fail("generate text", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", m.fail("generate text", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", m.fail("generate text", fmt.Errorf("decode response: %w", err))
	}
	if chatResp.Error != "" {
		return "", m.fail("generate text", fmt.Errorf("%s", chatResp.Error))
	}
	return chatResp.Message.Content, nil
}

// GenerateImage is not supported by Ollama models.
func (m *Model) GenerateImage(_ context.Context, _, _ string) ([]byte, error) {
	return nil, fmt.Errorf("%w: ollama models cannot generate images", domain.ErrNotImplemented)
}

// ModelName returns the name of the model being used.
func (m *Model) ModelName() string {
	return m.model
}

// Ping checks connectivity via /api/tags without running inference.
func (m *Model) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

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
	return &domain.ModelInvocationError{Provider: "ollama", Op: op, Err: err}
}
