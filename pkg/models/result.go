package models

import (
	"fmt"
	"time"
)

// ProviderID identifies an intelligence provider.
type ProviderID string

const (
	ProviderOrchestrator ProviderID = "anthropic"
	ProviderGrok         ProviderID = "grok"
	ProviderOpenAI       ProviderID = "openai"
	ProviderGemini       ProviderID = "gemini"
	ProviderNews         ProviderID = "news"
)

// PromptedProviders are the downstream providers that receive a tailored
// prompt from the orchestrator, in dispatch order.
var PromptedProviders = []ProviderID{ProviderGrok, ProviderOpenAI, ProviderGemini}

// Status is the settled outcome of one adapter call.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusFailed        Status = "failed"
	StatusTimedOut      Status = "timed_out"
	StatusNotConfigured Status = "not_configured"
)

// ErrorKind classifies a non-success outcome.
type ErrorKind string

const (
	ErrorNotConfigured     ErrorKind = "not_configured"
	ErrorTransport         ErrorKind = "transport"
	ErrorAuth              ErrorKind = "auth"
	ErrorRateLimited       ErrorKind = "rate_limited"
	ErrorMalformedResponse ErrorKind = "malformed_response"
	ErrorTimedOut          ErrorKind = "timed_out"
	ErrorCanceled          ErrorKind = "canceled"
)

// ErrorDetail carries a classified failure as data.
type ErrorDetail struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *ErrorDetail) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// PayloadKind tags the provider-specific payload variant.
type PayloadKind string

const (
	PayloadSentiment PayloadKind = "sentiment"
	PayloadNews      PayloadKind = "news"
)

// Payload is the structured record carried by a successful result.
type Payload interface {
	Kind() PayloadKind
	// SentimentScore returns the payload's score in [-1, 1], or false if
	// the payload holds no opinion.
	SentimentScore() (float64, bool)
}

// ProviderResult is the settled outcome of one adapter for one request.
// Payload is set only on success; Error only otherwise.
type ProviderResult struct {
	Provider ProviderID    `json:"provider"`
	Status   Status        `json:"status"`
	Payload  Payload       `json:"payload,omitempty"`
	Error    *ErrorDetail  `json:"error,omitempty"`
	Usage    *TokenUsage   `json:"usage,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the result carries a payload.
func (r ProviderResult) Succeeded() bool {
	return r.Status == StatusSuccess && r.Payload != nil
}

// SuccessResult builds a successful result.
func SuccessResult(id ProviderID, payload Payload, usage *TokenUsage) ProviderResult {
	return ProviderResult{Provider: id, Status: StatusSuccess, Payload: payload, Usage: usage}
}

// FailedResult builds a failed result. Kinds timed_out and not_configured
// are mapped to their dedicated statuses.
func FailedResult(id ProviderID, kind ErrorKind, msg string) ProviderResult {
	status := StatusFailed
	switch kind {
	case ErrorTimedOut:
		status = StatusTimedOut
	case ErrorNotConfigured:
		status = StatusNotConfigured
	}
	return ProviderResult{Provider: id, Status: status, Error: &ErrorDetail{Kind: kind, Message: msg}}
}

// NotConfiguredResult builds the result for a provider without credentials.
func NotConfiguredResult(id ProviderID) ProviderResult {
	return FailedResult(id, ErrorNotConfigured, "no credential configured")
}

// TimedOutResult builds the result for a provider that missed its deadline.
func TimedOutResult(id ProviderID, timeout time.Duration) ProviderResult {
	return FailedResult(id, ErrorTimedOut, fmt.Sprintf("no response within %s", timeout))
}
