package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Role constants.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the body sent to the chat-completions endpoint
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// APIError is a non-200 reply from the chat endpoint
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Completer sends one chat exchange and returns the assistant text
type Completer interface {
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (string, error)
}

// ChatClientOption configures the ChatClient.
type ChatClientOption func(*ChatClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ChatClientOption {
	return func(c *ChatClient) { c.http = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ChatClientOption {
	return func(c *ChatClient) { c.http.Timeout = d }
}

// ChatClient talks to an OpenAI-compatible chat-completions endpoint
type ChatClient struct {
	apiURL string
	http   *http.Client
	log    *zap.Logger
}

var _ Completer = (*ChatClient)(nil)

// NewChatClient creates a client for the full chat-completions URL
func NewChatClient(apiURL string, log *zap.Logger, opts ...ChatClientOption) *ChatClient {
	c := &ChatClient{
		apiURL: apiURL,
		http:   &http.Client{Timeout: 60 * time.Second},
		log:    log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Complete posts the request and returns the first choice's content. The
// content may be empty; interpreting it is up to the caller.
func (c *ChatClient) Complete(ctx context.Context, apiKey string, body CompletionRequest) (string, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	c.log.Debug("chat completion request",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
		zap.Int("bytes", len(jsonData)),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseAPIError(resp.StatusCode, respBody)
		c.log.Warn("chat completion failed",
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
		)
		return "", apiErr
	}

	var result completionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", nil
	}

	reply := result.Choices[0].Message.Content
	c.log.Debug("chat completion reply", zap.Int("chars", len(reply)))
	return reply, nil
}

// parseAPIError extracts the OpenAI error envelope, falling back to the raw body
func parseAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status, Message: string(bytes.TrimSpace(body))}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		switch code := envelope.Error.Code.(type) {
		case string:
			apiErr.Code = code
		default:
			apiErr.Code = envelope.Error.Type
		}
	}
	return apiErr
}
