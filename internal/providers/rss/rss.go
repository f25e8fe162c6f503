// Package rss implements a keyless news adapter over an RSS search feed
// (Google News by default). It fills the news slot when no Finnhub key is
// configured.
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/seenimoa/tickerscan/internal/analysis/sentiment"
	"github.com/seenimoa/tickerscan/internal/provider"
	"github.com/seenimoa/tickerscan/pkg/models"
)

// DefaultURLTemplate searches Google News. {query} is replaced by the
// escaped search terms.
const DefaultURLTemplate = "https://news.google.com/rss/search?q={query}&hl=en-US&gl=US&ceid=US:en"

// Options configures the adapter.
type Options struct {
	URLTemplate  string
	LookbackDays int
	HTTPClient   *http.Client
	Now          func() time.Time
}

// Adapter reads a news search feed for the request's symbol.
type Adapter struct {
	provider.BaseAdapter
	parser   *gofeed.Parser
	template string
	lookback time.Duration
	now      func() time.Time
}

// New creates an RSS news adapter.
func New(opts Options, logger *zap.Logger) *Adapter {
	if opts.URLTemplate == "" {
		opts.URLTemplate = DefaultURLTemplate
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "tickerscan/1.0"
	if opts.HTTPClient != nil {
		parser.Client = opts.HTTPClient
	}
	return &Adapter{
		BaseAdapter: provider.NewBaseAdapter(models.ProviderNews, logger),
		parser:      parser,
		template:    opts.URLTemplate,
		lookback:    time.Duration(opts.LookbackDays) * 24 * time.Hour,
		now:         opts.Now,
	}
}

// FeedURL returns the feed address for a request.
func (a *Adapter) FeedURL(req models.ResearchRequest) string {
	query := url.QueryEscape(req.Symbol + " stock")
	return strings.ReplaceAll(a.template, "{query}", query)
}

// Invoke needs no credential and ignores the prompt.
func (a *Adapter) Invoke(ctx context.Context, _ string, req models.ResearchRequest) models.ProviderResult {
	start := time.Now()
	items, err := a.Fetch(ctx, a.FeedURL(req))
	if err != nil {
		return a.Fail(err, start)
	}
	return a.Succeed(sentiment.BuildDigest(items), nil, start)
}

// Fetch parses the feed and keeps items inside the lookback window.
// Items without a publication date are kept.
func (a *Adapter) Fetch(ctx context.Context, feedURL string) ([]models.NewsRecord, error) {
	feed, err := a.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, classifyFeedError(ctx, err)
	}

	cutoff := a.now().Add(-a.lookback)
	items := make([]models.NewsRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		headline, source := splitSource(cleanHTML(item.Title))
		if headline == "" {
			continue
		}
		rec := models.NewsRecord{
			Headline: headline,
			Summary:  cleanHTML(item.Description),
			Source:   source,
			URL:      item.Link,
		}
		if rec.Source == "" {
			rec.Source = feed.Title
		}
		if item.PublishedParsed != nil {
			if item.PublishedParsed.Before(cutoff) {
				continue
			}
			rec.Timestamp = item.PublishedParsed.UTC()
		}
		items = append(items, rec)
	}
	return items, nil
}

func classifyFeedError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return &provider.HTTPError{Provider: models.ProviderNews, Code: httpErr.StatusCode, Body: httpErr.Status}
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return fmt.Errorf("%w: rss: %v", provider.ErrSchema, err)
	}
	return fmt.Errorf("rss: %w", err)
}

// splitSource separates the " - Publisher" suffix news search feeds
// append to titles.
func splitSource(title string) (headline, source string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
