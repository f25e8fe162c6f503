// Package provider defines the adapter contract between the research
// engine and external intelligence sources. An adapter translates one
// source's request/response shape into models.ProviderResult and never
// returns an error: every failure is carried as data.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/seenimoa/tickerscan/internal/llm"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// Adapter is the interface that every intelligence source implements.
type Adapter interface {
	// ID returns the provider slot this adapter fills.
	ID() models.ProviderID

	// Invoke runs one call for the request. A missing credential yields
	// NotConfigured without any network call.
	Invoke(ctx context.Context, prompt string, req models.ResearchRequest) models.ProviderResult
}

// Errors raised while decoding provider responses.
var (
	// ErrNoJSONObject means the text holds no balanced {...} span that
	// decodes as a JSON object.
	ErrNoJSONObject = errors.New("provider: no JSON object in response")

	// ErrSchema means a decoded object violates the expected record schema.
	ErrSchema = errors.New("provider: response violates schema")
)

// HTTPError is a non-2xx answer from a plain HTTP data source.
type HTTPError struct {
	Provider models.ProviderID
	Code     int
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.Code, e.Body)
}

// SchemaError builds an ErrSchema naming the offending field.
func SchemaError(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrSchema, field, fmt.Sprintf(format, args...))
}

// Classify maps an error to the failure taxonomy carried in results.
func Classify(err error) models.ErrorKind {
	if err == nil {
		return ""
	}

	var netErr net.Error
	var httpErr *HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.ErrorTimedOut
	case errors.Is(err, context.Canceled):
		return models.ErrorCanceled
	case errors.Is(err, llm.ErrNoAPIKey):
		return models.ErrorNotConfigured
	case errors.Is(err, llm.ErrUnauthorized):
		return models.ErrorAuth
	case errors.Is(err, llm.ErrRateLimit):
		return models.ErrorRateLimited
	case errors.Is(err, llm.ErrMalformedResponse),
		errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, ErrNoJSONObject),
		errors.Is(err, ErrSchema):
		return models.ErrorMalformedResponse
	case errors.As(err, &httpErr):
		switch httpErr.Code {
		case 401, 403:
			return models.ErrorAuth
		case 429:
			return models.ErrorRateLimited
		}
		return models.ErrorTransport
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.ErrorTimedOut
	default:
		return models.ErrorTransport
	}
}
