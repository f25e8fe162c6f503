package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIProvider implements LLMProvider for Chat Completions compatible
// APIs. The same client serves OpenAI and xAI (Grok).
type OpenAIProvider struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	hc      *http.Client
	client  *resty.Client
}

// OpenAIOption configures the OpenAI provider.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL sets a custom base URL (e.g., for proxies or xAI).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) { p.baseURL = strings.TrimRight(url, "/") }
}

// WithOpenAIModel sets the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) { p.model = model }
}

// WithOpenAITimeout sets the client-side request timeout.
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(p *OpenAIProvider) { p.timeout = d }
}

// WithOpenAIHTTPClient sets the underlying HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.hc = client }
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderOpenAI, apiKey, "https://api.openai.com/v1", "gpt-4o-mini", opts)
}

// NewXAIProvider creates a Grok provider on xAI's OpenAI-compatible API.
func NewXAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	return newOpenAICompatible(ProviderXAI, apiKey, "https://api.x.ai/v1", "grok-3-mini", opts)
}

func newOpenAICompatible(name, apiKey, baseURL, model string, opts []OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	p := &OpenAIProvider{
		name:    name,
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: 120 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.hc != nil {
		p.client = resty.NewWithClient(p.hc)
	} else {
		p.client = resty.New()
	}
	p.client.
		SetBaseURL(p.baseURL).
		SetTimeout(p.timeout).
		SetAuthToken(p.apiKey).
		SetHeader("Content-Type", "application/json")
	return p, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

// Chat sends a chat completion request.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	model := p.model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(p.buildRequest(messages, model, opts)).
		Post("/chat/completions")
	if err != nil {
		return nil, transportError(ctx, p.name, err)
	}
	if resp.IsError() {
		return nil, statusError(p.name, resp.StatusCode(), apiErrorMessage(resp.Body()))
	}

	var raw openAIChatResponse
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", ErrMalformedResponse, p.name, err)
	}
	if len(raw.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s: no choices", ErrEmptyResponse, p.name)
	}

	if raw.Model == "" {
		raw.Model = model
	}
	return &Response{
		Content:  raw.Choices[0].Message.Content,
		Model:    raw.Model,
		Provider: p.name,
		Latency:  time.Since(start),
		Usage: Usage{
			PromptTokens:     raw.Usage.PromptTokens,
			CompletionTokens: raw.Usage.CompletionTokens,
			TotalTokens:      raw.Usage.TotalTokens,
		},
	}, nil
}

// ── Internal Types ──

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	ID      string         `json:"id"`
	Choices []openAIChoice `json:"choices"`
	Usage   openAIUsage    `json:"usage"`
	Model   string         `json:"model"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// ── Helpers ──

func (p *OpenAIProvider) buildRequest(messages []Message, model string, opts *ChatOptions) openAIChatRequest {
	r := openAIChatRequest{Model: model, Messages: make([]openAIMessage, len(messages))}
	for i, m := range messages {
		r.Messages[i] = openAIMessage{Role: string(m.Role), Content: m.Content}
	}
	if opts != nil {
		if opts.Temperature > 0 {
			r.Temperature = &opts.Temperature
		}
		if opts.MaxTokens > 0 {
			r.MaxTokens = &opts.MaxTokens
		}
	}
	return r
}

func apiErrorMessage(body []byte) string {
	var apiErr openAIErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
