package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements LLMProvider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

type geminiSettings struct {
	model string
	hc    *http.Client
}

// GeminiOption configures the Gemini provider.
type GeminiOption func(*geminiSettings)

// WithGeminiModel sets the default model.
func WithGeminiModel(model string) GeminiOption {
	return func(s *geminiSettings) { s.model = model }
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiOption {
	return func(s *geminiSettings) { s.hc = client }
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	s := geminiSettings{model: "gemini-2.0-flash"}
	for _, opt := range opts {
		opt(&s)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.hc,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client, model: s.model}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

// Chat sends a generateContent request.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	system, rest := splitSystem(messages)

	model := p.model
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		var role string = genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(m.Content)},
		})
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, generateConfig(system, opts))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderGemini, apiErr.Code, apiErr.Message)
		}
		return nil, transportError(ctx, ProviderGemini, err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("%w: gemini: no text", ErrEmptyResponse)
	}

	r := &Response{
		Content:  text,
		Model:    model,
		Provider: ProviderGemini,
		Latency:  time.Since(start),
	}
	if u := resp.UsageMetadata; u != nil {
		r.Usage = Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.PromptTokenCount + u.CandidatesTokenCount),
		}
	}
	return r, nil
}

// generateConfig maps chat options onto a generateContent config.
func generateConfig(system string, opts *ChatOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts == nil {
		return config
	}
	if opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(min(opts.MaxTokens, math.MaxInt32))
	}
	return config
}
