// Package anthropic provides a text-only generative model adapter using the Anthropic API.
package anthropic

import (
	"bytes"
	"context"
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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 4096

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic model.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// MaxTokens caps the response length (default: 4096).
	MaxTokens int

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Model generates text with the Anthropic Messages API. It cannot produce images.
type Model struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
}

type messagesRequest struct {
	Model     string            `json:"model"`
	Messages  []messagesMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewModel creates a new Anthropic model client.
func NewModel(cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is required", domain.ErrLLMUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Model{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// GenerateText sends prompt as a single user message.
func (m *Model) GenerateText(ctx context.Context, prompt, systemInstruction string) (string, error) {
	reqBody := messagesRequest{
		Model:     m.model,
		Messages:  []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens: m.maxTokens,
		System:    systemInstruction,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", m.fail(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", m.fail(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", m.fail(domain.ErrRateLimited)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", m.fail(fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}
	if msgResp.Error != nil {
		return "", m.fail(fmt.Errorf("%s", msgResp.Error.Message))
	}
	if resp.StatusCode != http.StatusOK {
		return "", m.fail(fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if result.Len() == 0 {
		return "", m.fail(fmt.Errorf("no text content returned (stop reason %q)", msgResp.StopReason))
	}
	return result.String(), nil
}

// GenerateImage is not supported by Anthropic models.
func (m *Model) GenerateImage(_ context.Context, _, _ string) ([]byte, error) {
	return nil, fmt.Errorf("%w: anthropic models cannot generate images", domain.ErrNotImplemented)
}

// ModelName returns the name of the model being used.
func (m *Model) ModelName() string {
	return m.model
}

// Ping validates the API key by listing models.
func (m *Model) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: failed to create ping request: %w", err)
	}
	req.Header.Set("x-api-key", m.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := m.client.Do(req)
	if err != nil {
		return m.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return m.fail(fmt.Errorf("ping: status %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}

// Close releases resources.
func (m *Model) Close() error {
	return nil
}

func (m *Model) fail(err error) error {
	return &domain.ModelInvocationError{Provider: "anthropic", Op: "generate text", Err: err}
}
