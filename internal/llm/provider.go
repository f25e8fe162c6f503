// Package llm provides a unified chat interface over the reasoning and
// sentiment model providers used by the research engine: Anthropic
// (orchestrator), OpenAI-compatible APIs (xAI Grok, OpenAI) and Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names for routing and configuration.
const (
	ProviderOpenAI    = "openai"
	ProviderXAI       = "grok"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Common errors returned by LLM providers. Callers classify failures with
// errors.Is against these sentinels.
var (
	ErrNoAPIKey          = errors.New("llm: API key not configured")
	ErrUnauthorized      = errors.New("llm: API key rejected")
	ErrRateLimit         = errors.New("llm: rate limit exceeded")
	ErrProviderDown      = errors.New("llm: provider unavailable")
	ErrMalformedResponse = errors.New("llm: malformed response")
	ErrEmptyResponse     = errors.New("llm: empty response")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Response represents a complete response from the LLM.
type Response struct {
	Content  string        `json:"content"`
	Usage    Usage         `json:"usage"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Latency  time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// LLMProvider is the interface that all LLM backends implement.
type LLMProvider interface {
	// Name returns the provider identifier (e.g., "openai", "grok").
	Name() string

	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)
}

// Factory builds a provider for an API key. Credentials travel with each
// research request, so clients are built per call.
type Factory func(apiKey string) (LLMProvider, error)

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// splitSystem separates the first system message from the conversation,
// for APIs that take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system == "" {
				system = m.Content
			}
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// transportError wraps a client error, passing context errors through
// unchanged so deadlines stay distinguishable from network failures.
func transportError(ctx context.Context, provider string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", ErrProviderDown, provider, err)
}

// statusError maps an HTTP status code to a sentinel.
func statusError(provider string, code int, msg string) error {
	switch {
	case code == 401 || code == 403:
		return fmt.Errorf("%w: %s: %s", ErrUnauthorized, provider, msg)
	case code == 429 || code == 529:
		return fmt.Errorf("%w: %s: %s", ErrRateLimit, provider, msg)
	default:
		return fmt.Errorf("%w: %s: HTTP %d: %s", ErrProviderDown, provider, code, msg)
	}
}

// String returns a human-readable summary of the response.
func (r *Response) String() string {
	truncated := r.Content
	if len(truncated) > 100 {
		truncated = truncated[:100] + "..."
	}
	return fmt.Sprintf("[%s/%s] %q, %d tokens, %v",
		r.Provider, r.Model, truncated, r.Usage.TotalTokens, r.Latency.Round(time.Millisecond))
}
