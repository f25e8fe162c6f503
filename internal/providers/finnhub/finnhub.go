// Package finnhub implements the news adapter backed by Finnhub's
// company-news endpoint.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/analysis/sentiment"
	"github.com/seenimoa/tickerscan/internal/infra"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

const (
	defaultBaseURL  = "https://finnhub.io/api/v1"
	defaultLookback = 7
	dateLayout      = "2006-01-02"
)

// Options configures the adapter.
type Options struct {
	BaseURL      string
	LookbackDays int
	// RequestsPerSecond bounds calls to the API; zero means 30.
	RequestsPerSecond int
	HTTPClient        *http.Client
	Now               func() time.Time
}

// Adapter fetches recent company news and scores the headlines locally.
type Adapter struct {
	provider.BaseAdapter
	client   *resty.Client
	lookback int
	now      func() time.Time
}

// New creates a Finnhub news adapter.
func New(opts Options, logger *zap.Logger) *Adapter {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = defaultLookback
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var client *resty.Client
	if opts.HTTPClient != nil {
		client = resty.NewWithClient(opts.HTTPClient)
	} else {
		client = resty.New()
	}
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))

	a := &Adapter{
		BaseAdapter: provider.NewBaseAdapter(models.ProviderNews, logger),
		client:      client,
		lookback:    opts.LookbackDays,
		now:         opts.Now,
	}
	a.WithRateLimit(infra.NewRateLimiter(opts.RequestsPerSecond))
	return a
}

// companyNews is one item of the /company-news response. Finnhub's own
// sentiment fields, if any, are ignored.
type companyNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Invoke ignores the prompt: the request is parameterized by symbol and
// the lookback window only.
func (a *Adapter) Invoke(ctx context.Context, _ string, req models.ResearchRequest) models.ProviderResult {
	key := req.Credentials.For(models.ProviderNews)
	if key == "" {
		return a.NotConfigured()
	}
	start := time.Now()

	items, err := a.Fetch(ctx, req.Symbol, key)
	if err != nil {
		return a.Fail(err, start)
	}
	return a.Succeed(sentiment.BuildDigest(items), nil, start)
}

// Fetch returns the news items published within the lookback window.
func (a *Adapter) Fetch(ctx context.Context, symbol, apiKey string) ([]models.NewsRecord, error) {
	if err := a.RateLimit(ctx); err != nil {
		return nil, err
	}

	to := a.now().UTC()
	from := to.AddDate(0, 0, -a.lookback)
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format(dateLayout),
			"to":     to.Format(dateLayout),
			"token":  apiKey,
		}).
		Get("/company-news")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("finnhub: fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &provider.HTTPError{Provider: models.ProviderNews, Code: resp.StatusCode(), Body: body}
	}

	var raw []companyNews
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("%w: finnhub: %v", provider.ErrSchema, err)
	}

	items := make([]models.NewsRecord, 0, len(raw))
	for _, n := range raw {
		headline := strings.TrimSpace(n.Headline)
		if headline == "" {
			continue
		}
		items = append(items, models.NewsRecord{
			Headline:  headline,
			Summary:   strings.TrimSpace(n.Summary),
			Source:    n.Source,
			URL:       n.URL,
			Timestamp: time.Unix(n.DateTime, 0).UTC(),
		})
	}
	return items, nil
}
