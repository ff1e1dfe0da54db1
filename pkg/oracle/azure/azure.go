// Package azure provides an oracle backed by an Azure OpenAI chat-completions
// deployment.
//
// Azure OpenAI differs from the plain OpenAI API in its addressing scheme
// (endpoint + deployment name + api-version query parameter) and its use of an
// "api-key" header instead of a Bearer token, so this backend speaks the REST
// contract directly rather than going through an SDK.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tghensley/audiopilot/pkg/oracle"
)

// defaultAPIVersion is used when no explicit api-version is configured.
const defaultAPIVersion = "2023-05-15"

// defaultTimeout bounds the outbound completion call.
const defaultTimeout = 30 * time.Second

// Oracle implements [oracle.Oracle] against an Azure OpenAI deployment.
type Oracle struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	client     *http.Client
}

// Compile-time interface assertion.
var _ oracle.Oracle = (*Oracle)(nil)

// Option is a functional option for [New].
type Option func(*Oracle)

// WithAPIVersion overrides the default api-version query parameter.
func WithAPIVersion(v string) Option {
	return func(o *Oracle) {
		if v != "" {
			o.apiVersion = v
		}
	}
}

// WithTimeout sets a per-request timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) {
		if d > 0 {
			o.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client (useful for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(o *Oracle) {
		o.client = c
	}
}

// New constructs an Azure OpenAI oracle. Endpoint, API key, and deployment
// name are all required; their presence is what gates the AI interpretation
// path, so callers should treat a construction error as "run fallback only".
func New(endpoint, apiKey, deployment string, opts ...Option) (*Oracle, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("azure: endpoint must not be empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("azure: apiKey must not be empty")
	}
	if deployment == "" {
		return nil, fmt.Errorf("azure: deployment must not be empty")
	}

	o := &Oracle{
		endpoint:   endpoint,
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: defaultAPIVersion,
		client:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// chatRequest is the Azure OpenAI chat-completions request body.
type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response body we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements [oracle.Oracle].
func (o *Oracle) Complete(ctx context.Context, req oracle.Request) (string, error) {
	body := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("azure: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		o.endpoint, o.deployment, o.apiVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("azure: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("azure: chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("azure: chat completion status %d: %s", resp.StatusCode, msg)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("azure: decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("azure: empty choices in response")
	}

	return cr.Choices[0].Message.Content, nil
}
