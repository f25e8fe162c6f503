package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements LLMProvider on the Anthropic Messages API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

type anthropicSettings struct {
	model     string
	maxTokens int64
	baseURL   string
	hc        *http.Client
}

// AnthropicOption configures the Anthropic provider.
type AnthropicOption func(*anthropicSettings)

// WithAnthropicModel sets the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(s *anthropicSettings) { s.model = model }
}

// WithAnthropicMaxTokens sets the response token cap.
func WithAnthropicMaxTokens(n int) AnthropicOption {
	return func(s *anthropicSettings) { s.maxTokens = int64(n) }
}

// WithAnthropicBaseURL sets a custom base URL.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(s *anthropicSettings) { s.baseURL = strings.TrimRight(url, "/") }
}

// WithAnthropicHTTPClient sets a custom HTTP client.
func WithAnthropicHTTPClient(client *http.Client) AnthropicOption {
	return func(s *anthropicSettings) { s.hc = client }
}

// NewAnthropicProvider creates an Anthropic provider. SDK retries are
// disabled; callers own the failure policy.
func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := anthropicSettings{model: "claude-3-5-haiku-latest", maxTokens: 1024}
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.hc != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(s.hc))
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(reqOpts...),
		model:     s.model,
		maxTokens: s.maxTokens,
	}, nil
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// Chat sends a Messages API request. The first system message is sent as
// the system prompt.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return nil, fmt.Errorf("anthropic: at least one user message is required")
	}

	model := p.model
	maxTokens := p.maxTokens
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		if opts.MaxTokens > 0 {
			maxTokens = int64(opts.MaxTokens)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(rest)),
	}
	for _, m := range rest {
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts != nil && opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderAnthropic, apiErr.StatusCode, apiErr.Error())
		}
		return nil, transportError(ctx, ProviderAnthropic, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("%w: anthropic: no text blocks", ErrEmptyResponse)
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &Response{
		Content:  sb.String(),
		Model:    string(msg.Model),
		Provider: ProviderAnthropic,
		Latency:  time.Since(start),
		Usage:    Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out},
	}, nil
}
